// ==============================================================================================
// FILE: evaluator/evaluator.go
// ==============================================================================================
// PACKAGE: evaluator
// PURPOSE: The tree-walking execution engine. Eval recursively dispatches on
//          AST node variants, mutates the current scope, and produces
//          output on the configured sink. break/continue/return are typed
//          signals bubbled up through the same Value return channel as
//          ordinary results and runtime errors (spec §4.3/§4.6).
// ==============================================================================================

package evaluator

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"eloquence/ast"
	"eloquence/builtin"
	"eloquence/object"
	"eloquence/token"
)

// Evaluator holds the scope currently in effect (rebound across function
// calls), the output sink, and the call-name stack consulted by the
// `stacktrace` builtin.
type Evaluator struct {
	scope     *object.Scope
	out       io.Writer
	callNames []string
}

// New builds an Evaluator with a fresh root scope pre-populated by the
// host-function registrar (spec §2's data-flow description).
func New(out io.Writer, in *bufio.Reader) *Evaluator {
	e := &Evaluator{scope: object.NewScope(), out: out}
	builtin.Register(e.scope, out, in, e.CallStack)
	return e
}

// Scope exposes the evaluator's current root scope, used by the REPL to
// keep bindings alive across lines.
func (e *Evaluator) Scope() *object.Scope { return e.scope }

// CallStack returns a snapshot of the current call-name stack, oldest call
// first, for the `stacktrace` builtin.
func (e *Evaluator) CallStack() []string {
	cp := make([]string, len(e.callNames))
	copy(cp, e.callNames)
	return cp
}

// Run evaluates the root block. A break/continue/return signal reaching
// this point has escaped every enclosing construct, which spec §4.6 treats
// as a fatal error rather than an ordinary result.
func (e *Evaluator) Run(block *ast.Block) object.Value {
	result := e.Eval(block)
	if object.IsSignal(result) {
		return &object.Error{Message: fmt.Sprintf("uncaught %s at program root", result.Inspect())}
	}
	return result
}

// Eval dispatches on node's concrete type.
func (e *Evaluator) Eval(node ast.Node) object.Value {
	switch n := node.(type) {
	case *ast.Number:
		return e.evalNumber(n)
	case *ast.String:
		return &object.String{Value: n.Tok.Literal}
	case *ast.Bool:
		return &object.Bool{Value: n.Tok.Literal == "true"}
	case *ast.Nil:
		return object.NilValue
	case *ast.Variable:
		return e.evalVariable(n)
	case *ast.List:
		return e.evalList(n)
	case *ast.Block:
		return e.evalBlock(n)
	case *ast.Index:
		return e.evalIndex(n)
	case *ast.Slice:
		return e.evalSlice(n)
	case *ast.UnaryOp:
		return e.evalUnary(n)
	case *ast.BinOp:
		return e.evalBinOp(n)
	case *ast.If:
		return e.evalIf(n)
	case *ast.While:
		return e.evalWhile(n)
	case *ast.For:
		return e.evalFor(n)
	case *ast.Break:
		return &object.BreakSignal{}
	case *ast.Continue:
		return &object.ContinueSignal{}
	case *ast.Return:
		return e.evalReturn(n)
	case *ast.Function:
		return &object.UserFn{Params: n.Params, Body: n.Body, Closure: e.scope}
	case *ast.Call:
		return e.evalCall(n)
	case *ast.Assignment:
		return e.evalAssignment(n)
	default:
		return &object.Error{Message: fmt.Sprintf("cannot evaluate node type %T", node)}
	}
}

// evalNumber parses the lexeme as f64 on every evaluation, not at parse
// time — a malformed scan (spec §4.1's permissive ReadNumber) only fails
// here (spec §4.3).
func (e *Evaluator) evalNumber(n *ast.Number) object.Value {
	v, err := strconv.ParseFloat(n.Tok.Literal, 64)
	if err != nil {
		return &object.Error{Message: fmt.Sprintf("malformed number %q", n.Tok.Literal)}
	}
	return &object.Number{Value: v}
}

func (e *Evaluator) evalVariable(n *ast.Variable) object.Value {
	v, ok := e.scope.LookUp(n.Name)
	if !ok {
		return &object.Error{Message: fmt.Sprintf("unbound variable %q", n.Name)}
	}
	return v
}

func (e *Evaluator) evalList(n *ast.List) object.Value {
	elems := make([]object.Value, 0, len(n.Elements))
	for _, el := range n.Elements {
		v := e.Eval(el)
		if object.IsError(v) {
			return v
		}
		elems = append(elems, v)
	}
	return &object.List{Elements: elems}
}

// evalBlock evaluates statements sequentially; the result is the value of
// the last statement, or nil if empty. An error or a break/continue/return
// signal short-circuits the remaining statements (spec §4.3).
func (e *Evaluator) evalBlock(b *ast.Block) object.Value {
	var result object.Value = object.NilValue
	for _, stmt := range b.Statements {
		result = e.Eval(stmt)
		if object.IsError(result) || object.IsSignal(result) {
			return result
		}
	}
	return result
}

func wholeNumber(v object.Value) (int, *object.Error) {
	n, ok := v.(*object.Number)
	if !ok {
		return 0, &object.Error{Message: "index must be a number"}
	}
	if n.Value != math.Trunc(n.Value) {
		return 0, &object.Error{Message: "index must be a whole number"}
	}
	return int(n.Value), nil
}

// evalIndex returns a one-character substring for strings or the element
// at idx for lists (spec §4.3).
func (e *Evaluator) evalIndex(n *ast.Index) object.Value {
	obj := e.Eval(n.Object)
	if object.IsError(obj) {
		return obj
	}
	idxVal := e.Eval(n.Index)
	if object.IsError(idxVal) {
		return idxVal
	}
	idx, errv := wholeNumber(idxVal)
	if errv != nil {
		return errv
	}

	switch o := obj.(type) {
	case *object.String:
		if idx < 0 || idx >= len(o.Value) {
			return &object.Error{Message: "index out of range"}
		}
		return &object.String{Value: o.Value[idx : idx+1]}
	case *object.List:
		if idx < 0 || idx >= len(o.Elements) {
			return &object.Error{Message: "index out of range"}
		}
		return o.Elements[idx]
	default:
		return &object.Error{Message: fmt.Sprintf("index operator not supported: %s", obj.Type())}
	}
}

// evalSlice implements spec §4.3's range access, including the
// deliberately inconsistent bound rule: strings take a length of
// end-start+1 (inclusive-right), lists take end-start (exclusive) — see
// spec §9.
func (e *Evaluator) evalSlice(n *ast.Slice) object.Value {
	obj := e.Eval(n.Object)
	if object.IsError(obj) {
		return obj
	}

	var length int
	switch o := obj.(type) {
	case *object.String:
		length = len(o.Value)
	case *object.List:
		length = len(o.Elements)
	default:
		return &object.Error{Message: fmt.Sprintf("slice operator not supported: %s", obj.Type())}
	}

	start := 0
	if n.Start != nil {
		sv := e.Eval(n.Start)
		if object.IsError(sv) {
			return sv
		}
		v, errv := wholeNumber(sv)
		if errv != nil {
			return errv
		}
		start = v
	}

	end := length
	if n.End != nil {
		ev := e.Eval(n.End)
		if object.IsError(ev) {
			return ev
		}
		v, errv := wholeNumber(ev)
		if errv != nil {
			return errv
		}
		end = v
	}

	if start < 0 || end <= start || end > length {
		return &object.Error{Message: "slice bounds out of range"}
	}

	switch o := obj.(type) {
	case *object.String:
		upper := start + (end - start + 1)
		if upper > len(o.Value) {
			upper = len(o.Value)
		}
		return &object.String{Value: o.Value[start:upper]}
	case *object.List:
		out := make([]object.Value, end-start)
		copy(out, o.Elements[start:end])
		return &object.List{Elements: out}
	}
	return object.NilValue
}

// evalUnary implements only `-`; `+` and `not` parse but fail here (spec
// §4.3/§9 — preserved deliberately).
func (e *Evaluator) evalUnary(n *ast.UnaryOp) object.Value {
	operand := e.Eval(n.Operand)
	if object.IsError(operand) {
		return operand
	}
	switch n.Op {
	case token.MINUS:
		num, ok := operand.(*object.Number)
		if !ok {
			return &object.Error{Message: "unary - requires a number"}
		}
		return &object.Number{Value: -num.Value}
	case token.PLUS, token.NOT:
		return &object.Error{Message: fmt.Sprintf("unary %s is not implemented", n.Literal)}
	default:
		return &object.Error{Message: "unknown unary operator"}
	}
}

// evalBinOp evaluates left then right and dispatches on the operand-variant
// pair per spec §4.3's table.
func (e *Evaluator) evalBinOp(n *ast.BinOp) object.Value {
	left := e.Eval(n.Left)
	if object.IsError(left) {
		return left
	}
	right := e.Eval(n.Right)
	if object.IsError(right) {
		return right
	}

	switch l := left.(type) {
	case *object.Number:
		if r, ok := right.(*object.Number); ok {
			return evalNumberBinOp(n.Op, l, r)
		}
	case *object.String:
		switch r := right.(type) {
		case *object.String:
			return evalStringStringBinOp(n.Op, l, r)
		case *object.Number:
			return evalStringNumberBinOp(n.Op, l, r.Value)
		case *object.Bool:
			return evalStringBoolBinOp(n.Op, l, r)
		}
	case *object.List:
		switch r := right.(type) {
		case *object.List:
			return evalListListBinOp(n.Op, l, r)
		case *object.Number:
			return evalListNumberBinOp(n.Op, l, r.Value)
		}
	}

	return &object.Error{Message: fmt.Sprintf("unknown operation: %s %s %s", left.Type(), n.Literal, right.Type())}
}

func evalNumberBinOp(op token.TokenType, l, r *object.Number) object.Value {
	switch op {
	case token.PLUS:
		return &object.Number{Value: l.Value + r.Value}
	case token.MINUS:
		return &object.Number{Value: l.Value - r.Value}
	case token.MULTIPLY:
		return &object.Number{Value: l.Value * r.Value}
	case token.DIVIDE:
		if r.Value == 0 {
			return &object.Error{Message: "division by zero"}
		}
		return &object.Number{Value: l.Value / r.Value}
	case token.MOD:
		if r.Value == 0 {
			return &object.Error{Message: "division by zero"}
		}
		return &object.Number{Value: math.Mod(l.Value, r.Value)}
	case token.POW:
		return &object.Number{Value: math.Pow(l.Value, r.Value)}
	case token.EQ:
		return &object.Bool{Value: l.Value == r.Value}
	case token.N_EQ:
		return &object.Bool{Value: l.Value != r.Value}
	case token.LESS:
		return &object.Bool{Value: l.Value < r.Value}
	case token.GREATER:
		return &object.Bool{Value: l.Value > r.Value}
	case token.LESS_EQ:
		return &object.Bool{Value: l.Value <= r.Value}
	case token.GREATER_EQ:
		return &object.Bool{Value: l.Value >= r.Value}
	default:
		return &object.Error{Message: "unknown operation"}
	}
}

func evalStringStringBinOp(op token.TokenType, l, r *object.String) object.Value {
	switch op {
	case token.PLUS:
		return &object.String{Value: l.Value + r.Value}
	case token.MINUS:
		if !strings.HasSuffix(l.Value, r.Value) {
			return &object.Error{Message: fmt.Sprintf("%q does not end with %q", l.Value, r.Value)}
		}
		return &object.String{Value: strings.TrimSuffix(l.Value, r.Value)}
	case token.EQ:
		return &object.Bool{Value: l.Value == r.Value}
	case token.N_EQ:
		return &object.Bool{Value: l.Value != r.Value}
	case token.LESS:
		return &object.Bool{Value: l.Value < r.Value}
	case token.GREATER:
		return &object.Bool{Value: l.Value > r.Value}
	case token.LESS_EQ:
		return &object.Bool{Value: l.Value <= r.Value}
	case token.GREATER_EQ:
		return &object.Bool{Value: l.Value >= r.Value}
	default:
		return &object.Error{Message: "unknown operation"}
	}
}

// repeat builds the "integer part full copies, then a fractional-length
// prefix" sequence shared by string*number, string*bool, and list*number
// (spec §4.3). A negative factor clamps to zero copies here; the
// string*number path rejects negative factors outright before reaching
// this helper, matching the original's behavior, so the clamp only ever
// fires for list*number and string*bool (whose factor is never negative).
func repeatCount(factor float64, length int) (whole, prefixLen int) {
	if factor < 0 {
		factor = 0
	}
	whole = int(math.Floor(factor))
	frac := factor - float64(whole)
	prefixLen = int(math.Floor(frac * float64(length)))
	return
}

func evalStringNumberBinOp(op token.TokenType, l *object.String, factor float64) object.Value {
	if op != token.MULTIPLY {
		return &object.Error{Message: "unknown operation"}
	}
	if factor < 0 {
		return &object.Error{Message: "string can not be multiplied by a negative number"}
	}
	whole, prefixLen := repeatCount(factor, len(l.Value))
	var sb strings.Builder
	sb.WriteString(strings.Repeat(l.Value, whole))
	sb.WriteString(l.Value[:prefixLen])
	return &object.String{Value: sb.String()}
}

func evalStringBoolBinOp(op token.TokenType, l *object.String, r *object.Bool) object.Value {
	if op != token.MULTIPLY {
		return &object.Error{Message: "unknown operation"}
	}
	factor := 0.0
	if r.Value {
		factor = 1.0
	}
	whole, prefixLen := repeatCount(factor, len(l.Value))
	var sb strings.Builder
	sb.WriteString(strings.Repeat(l.Value, whole))
	sb.WriteString(l.Value[:prefixLen])
	return &object.String{Value: sb.String()}
}

func evalListListBinOp(op token.TokenType, l, r *object.List) object.Value {
	if op != token.PLUS {
		return &object.Error{Message: "unknown operation"}
	}
	out := make([]object.Value, 0, len(l.Elements)+len(r.Elements))
	out = append(out, l.Elements...)
	out = append(out, r.Elements...)
	return &object.List{Elements: out}
}

func evalListNumberBinOp(op token.TokenType, l *object.List, factor float64) object.Value {
	if op != token.MULTIPLY {
		return &object.Error{Message: "unknown operation"}
	}
	whole, prefixLen := repeatCount(factor, len(l.Elements))
	out := make([]object.Value, 0, whole*len(l.Elements)+prefixLen)
	for i := 0; i < whole; i++ {
		out = append(out, l.Elements...)
	}
	out = append(out, l.Elements[:prefixLen]...)
	return &object.List{Elements: out}
}

func asBool(v object.Value) (*object.Bool, *object.Error) {
	b, ok := v.(*object.Bool)
	if !ok {
		return nil, &object.Error{Message: fmt.Sprintf("condition must be boolean, got %s", v.Type())}
	}
	return b, nil
}

// evalIf tries the primary condition, then each else-if in order, falling
// through to else if present (spec §4.3).
func (e *Evaluator) evalIf(n *ast.If) object.Value {
	cond := e.Eval(n.Cond)
	if object.IsError(cond) {
		return cond
	}
	b, errv := asBool(cond)
	if errv != nil {
		return errv
	}
	if b.Value {
		return e.evalBlock(n.Then)
	}

	for _, ei := range n.ElseIfs {
		c := e.Eval(ei.Cond)
		if object.IsError(c) {
			return c
		}
		cb, errv := asBool(c)
		if errv != nil {
			return errv
		}
		if cb.Value {
			return e.evalBlock(ei.Then)
		}
	}

	if n.Else != nil {
		return e.evalBlock(n.Else)
	}
	return object.NilValue
}

// evalWhile catches break (terminates) and continue (re-checks the
// condition); a return signal or error propagates past the loop (spec
// §4.3/§4.6).
func (e *Evaluator) evalWhile(n *ast.While) object.Value {
	for {
		cond := e.Eval(n.Cond)
		if object.IsError(cond) {
			return cond
		}
		b, errv := asBool(cond)
		if errv != nil {
			return errv
		}
		if !b.Value {
			return object.NilValue
		}

		result := e.evalBlock(n.Body)
		switch result.(type) {
		case *object.BreakSignal:
			return object.NilValue
		case *object.ContinueSignal:
			continue
		}
		if object.IsError(result) || result.Type() == object.RETURN_SIGNAL {
			return result
		}
	}
}

// evalFor binds the iterator name in the current scope for each element of
// the (required) list iterable. break/continue are NOT caught here — they
// propagate past the loop to the nearest enclosing while, or to the program
// root, which Run treats as fatal (spec §4.3/§9).
func (e *Evaluator) evalFor(n *ast.For) object.Value {
	iterableVal := e.Eval(n.Iterable)
	if object.IsError(iterableVal) {
		return iterableVal
	}
	list, ok := iterableVal.(*object.List)
	if !ok {
		return &object.Error{Message: fmt.Sprintf("for iterable must be a list, got %s", iterableVal.Type())}
	}

	for _, elem := range list.Elements {
		e.scope.Bind(n.IterName, elem)
		result := e.evalBlock(n.Body)
		if object.IsError(result) || object.IsSignal(result) {
			return result
		}
	}
	return object.NilValue
}

func (e *Evaluator) evalReturn(n *ast.Return) object.Value {
	if n.Value == nil {
		return &object.ReturnSignal{Value: object.NilValue}
	}
	v := e.Eval(n.Value)
	if object.IsError(v) {
		return v
	}
	return &object.ReturnSignal{Value: v}
}

// evalCall looks up call.Name in the current scope, evaluates arguments
// left to right, and dispatches on whether the callee is a host or user
// function (spec §4.3). call.Name is pushed onto the call-name stack for
// the duration of the call, including on unwinding.
func (e *Evaluator) evalCall(n *ast.Call) object.Value {
	fnVal, ok := e.scope.LookUp(n.Name)
	if !ok {
		return &object.Error{Message: fmt.Sprintf("unbound variable %q", n.Name)}
	}

	args := make([]object.Value, 0, len(n.Args))
	for _, a := range n.Args {
		v := e.Eval(a)
		if object.IsError(v) {
			return v
		}
		args = append(args, v)
	}

	e.callNames = append(e.callNames, n.Name)
	defer func() { e.callNames = e.callNames[:len(e.callNames)-1] }()

	switch fn := fnVal.(type) {
	case *object.HostFn:
		return fn.Fn(args)
	case *object.UserFn:
		if len(args) != len(fn.Params) {
			return &object.Error{Message: fmt.Sprintf("%s: wrong number of arguments, got %d, want %d", n.Name, len(args), len(fn.Params))}
		}
		callScope := object.NewEnclosedScope(fn.Closure)
		for i, p := range fn.Params {
			callScope.Bind(p, args[i])
		}

		prevScope := e.scope
		e.scope = callScope
		result := e.evalBlock(fn.Body)
		e.scope = prevScope

		if rs, ok := result.(*object.ReturnSignal); ok {
			return rs.Value
		}
		return result
	default:
		return &object.Error{Message: fmt.Sprintf("%s is not a function", n.Name)}
	}
}

// evalAssignment evaluates the right-hand side, then writes it per spec
// §4.4's scope-assignment rule. `=` additionally sets a UserFn value's name
// to the target identifier, supporting recursive self-reference.
// Compound operators require both sides to already be numbers.
func (e *Evaluator) evalAssignment(n *ast.Assignment) object.Value {
	val := e.Eval(n.Value)
	if object.IsError(val) {
		return val
	}

	if n.Op == token.ASSIGN {
		if fn, ok := val.(*object.UserFn); ok {
			fn.Name = n.Name
		}
		e.scope.Assign(n.Name, val)
		return val
	}

	newNum, ok := val.(*object.Number)
	if !ok {
		return &object.Error{Message: "compound assignment requires a number"}
	}
	current, ok := e.scope.LookUp(n.Name)
	if !ok {
		return &object.Error{Message: fmt.Sprintf("unbound variable %q", n.Name)}
	}
	curNum, ok := current.(*object.Number)
	if !ok {
		return &object.Error{Message: "compound assignment requires a number"}
	}

	var result float64
	switch n.Op {
	case token.PLUS_A:
		result = curNum.Value + newNum.Value
	case token.MINUS_A:
		result = curNum.Value - newNum.Value
	case token.MULTIPLY_A:
		result = curNum.Value * newNum.Value
	case token.DIVIDE_A:
		if newNum.Value == 0 {
			return &object.Error{Message: "division by zero"}
		}
		result = curNum.Value / newNum.Value
	case token.MOD_A:
		if newNum.Value == 0 {
			return &object.Error{Message: "division by zero"}
		}
		result = math.Mod(curNum.Value, newNum.Value)
	case token.POW_A:
		result = math.Pow(curNum.Value, newNum.Value)
	default:
		return &object.Error{Message: "unknown assignment operator"}
	}

	out := &object.Number{Value: result}
	e.scope.Assign(n.Name, out)
	return out
}
