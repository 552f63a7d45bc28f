package checker

import (
	"fmt"

	"github.com/cadl-lang/cadlc/decorator"
	"github.com/cadl-lang/cadlc/diagnostic"
	"github.com/cadl-lang/cadlc/syntax"
	"github.com/cadl-lang/cadlc/types"
)

// subst binds a template declaration's parameters to concrete argument
// types for the duration of one instantiation (spec.md §4.5 "Template
// instantiation").
type subst map[*syntax.TemplateParameterDecl]types.Type

// instKey computes the memoization key for (declaration, argument
// identity tuple) per spec.md §4.5: pointer identity stands in for "type
// identity" since every constructed type and every literal (via the
// intern pool) has one stable address for its lifetime.
func instKey(decl any, args []types.Type) string {
	key := fmt.Sprintf("%p", decl)
	for _, a := range args {
		key += fmt.Sprintf("|%p", a)
	}
	return key
}

func (c *Checker) buildModel(decl *syntax.ModelStatement, ns *types.Namespace, args []types.Type, sc *fileScope, outer subst) *types.Model {
	key := instKey(decl, args)
	if t, ok := c.instCache[key]; ok {
		return t.(*types.Model)
	}

	sb := bindTemplateArgs(decl.TemplateParameters, args, outer)
	model := &types.Model{Name: decl.Name.Name, Namespace: ns}
	c.instCache[key] = model // placeholder visible to recursive self-reference before body is built

	if decl.Extends != nil {
		base := c.resolveModelRef(decl.Extends, decl, sc, sb)
		if base != nil {
			if cycled := c.baseChainCycles(base, model); cycled {
				c.errorf(diagnostic.CodeRecursiveBase, targetAt(sc.source, decl.Extends),
					"Model type '{name}' recursively references itself as a base type.",
					map[string]string{"name": decl.Name.Name})
			} else {
				model.BaseModel = base
			}
		}
	}

	seen := map[string]bool{}
	for _, member := range decl.Properties {
		switch p := member.(type) {
		case *syntax.ModelProperty:
			prop := c.buildModelProperty(p, model, sc, sb)
			if seen[prop.Name] {
				c.errorf(diagnostic.CodeDuplicateProperty, targetAt(sc.source, p),
					"duplicate property '{name}'", map[string]string{"name": prop.Name})
			}
			seen[prop.Name] = true
			model.Properties = append(model.Properties, prop)
		case *syntax.ModelSpreadProperty:
			target := c.resolveModelRef(p.Target, p, sc, sb)
			if target == nil {
				continue
			}
			for _, src := range target.Properties {
				if seen[src.Name] {
					c.errorf(diagnostic.CodeDuplicateProperty, targetAt(sc.source, p),
						"duplicate property '{name}' from spread", map[string]string{"name": src.Name})
					continue
				}
				seen[src.Name] = true
				model.Properties = append(model.Properties, &types.ModelProperty{
					Name: src.Name, Type: src.Type, Optional: src.Optional, Default: src.Default,
					Owner: model, SourceProperty: src, Decorators: src.Decorators,
				})
			}
		}
	}

	if model.BaseModel != nil {
		for _, baseProp := range model.BaseModel.Properties {
			if seen[baseProp.Name] {
				c.errorf(diagnostic.CodeDuplicateProperty, targetAt(sc.source, decl.Name),
					"property '{name}' duplicates an inherited property", map[string]string{"name": baseProp.Name})
			}
		}
	}

	if decl.Is != nil {
		c.applyIs(model, decl.Is, decl, sc, sb)
	}

	c.invokeDecorators(decl.Base().Decorators, model, decl, sc, sb)
	return model
}

// applyIs implements spec.md §4.5 "`is`: clones the base model's
// decorators and properties onto the derived, then adds the derived's
// own; the base's baseModel is preserved."
func (c *Checker) applyIs(model *types.Model, isExpr *syntax.TypeReferenceExpression, site syntax.Node, sc *fileScope, sb subst) {
	base := c.resolveModelRef(isExpr, site, sc, sb)
	if base == nil {
		return
	}
	own := model.Properties
	model.Properties = nil
	for _, p := range base.Properties {
		model.Properties = append(model.Properties, &types.ModelProperty{
			Name: p.Name, Type: p.Type, Optional: p.Optional, Default: p.Default,
			Owner: model, SourceProperty: p, Decorators: p.Decorators,
		})
	}
	model.Properties = append(model.Properties, own...)
	model.BaseModel = base.BaseModel
	model.Decorators = append(model.Decorators, base.Decorators...)
}

// baseChainCycles walks base's own BaseModel chain to see if it re-enters
// self, per spec.md §4.5 "Cycle detection".
func (c *Checker) baseChainCycles(base, self *types.Model) bool {
	for cur := base; cur != nil; cur = cur.BaseModel {
		if cur == self {
			return true
		}
	}
	return false
}

func (c *Checker) buildModelProperty(p *syntax.ModelProperty, owner *types.Model, sc *fileScope, sb subst) *types.ModelProperty {
	prop := &types.ModelProperty{Name: p.Name, Optional: p.Optional, Owner: owner}
	prop.Type = c.resolveTypeExpr(p.Value, sc, sb)
	if p.Default != nil {
		def := c.evalConstExpr(p.Default, sc, sb)
		prop.Default = def
		c.checkDefaultAssignable(prop, p, sc)
	}
	c.invokeDecorators(p.Base().Decorators, prop, p, sc, sb)
	return prop
}

// checkDefaultAssignable implements spec.md §4.5/§8 scenario 6: "a
// property with both ? and = <expr> has its default type-checked against
// its declared type", and spec.md §7's required "default-on-required"
// check: a property carrying a default value but not marked optional is
// always flagged, regardless of whether the default's type matches.
func (c *Checker) checkDefaultAssignable(prop *types.ModelProperty, site syntax.Node, sc *fileScope) {
	if prop.Default == nil {
		return
	}
	if !prop.Optional {
		c.errorf(diagnostic.CodeDefaultOnRequired, targetAt(sc.source, site),
			"property '{name}' has a default value but is not optional", map[string]string{"name": prop.Name})
	}
	if prop.Type == nil {
		return
	}
	if kind, ok := assignable(prop.Type, prop.Default); !ok {
		c.errorf(diagnostic.CodeDefaultTypeMismatch, targetAt(sc.source, site),
			"Default must be a {kind}", map[string]string{"kind": kind})
	}
}

// assignable is a conservative check: an intrinsic numeric type accepts
// only NumericLiteral defaults, "string" only StringLiteral, "boolean"
// only BooleanLiteral; anything else is accepted without complaint (full
// structural assignability is out of scope for this pass). On mismatch it
// also returns the expected-kind name for the diagnostic message.
func assignable(declared, value types.Type) (expectedKind string, ok bool) {
	intr, isIntrinsic := declared.(*types.Intrinsic)
	if !isIntrinsic {
		return "", true
	}
	switch intr.Name {
	case "int8", "int16", "int32", "int64", "float32", "float64":
		_, ok := value.(*types.NumericLiteral)
		return "number", ok
	case "string":
		_, ok := value.(*types.StringLiteral)
		return "string", ok
	case "boolean":
		_, ok := value.(*types.BooleanLiteral)
		return "boolean", ok
	default:
		return "", true
	}
}

func typeName(t types.Type) string {
	switch v := t.(type) {
	case *types.Intrinsic:
		return v.Name
	case *types.Model:
		return v.Name
	default:
		return "unknown"
	}
}

func (c *Checker) buildInterface(decl *syntax.InterfaceStatement, ns *types.Namespace, sc *fileScope) *types.Interface {
	key := instKey(decl, nil)
	if t, ok := c.instCache[key]; ok {
		return t.(*types.Interface)
	}
	iface := &types.Interface{Name: decl.Name.Name, Namespace: ns}
	c.instCache[key] = iface
	for _, m := range decl.Mixes {
		if mixed := c.resolveInterfaceRef(m, decl, sc); mixed != nil {
			iface.MixedIn = append(iface.MixedIn, mixed)
			iface.Operations = append(iface.Operations, mixed.Operations...)
		}
	}
	for _, op := range decl.Operations {
		iface.Operations = append(iface.Operations, c.buildOperation(op, ns, iface, sc))
	}
	c.invokeDecorators(decl.Base().Decorators, iface, decl, sc, nil)
	return iface
}

func (c *Checker) buildOperation(decl *syntax.OperationStatement, ns *types.Namespace, iface *types.Interface, sc *fileScope) *types.Operation {
	key := instKey(decl, nil)
	if t, ok := c.instCache[key]; ok {
		return t.(*types.Operation)
	}
	op := &types.Operation{Name: decl.Name.Name, Namespace: ns, Interface: iface}
	c.instCache[key] = op
	if decl.Parameters != nil {
		params := &types.Model{Name: "", Namespace: ns, IsAnonymous: true}
		for _, member := range decl.Parameters.Properties {
			if p, ok := member.(*syntax.ModelProperty); ok {
				params.Properties = append(params.Properties, c.buildModelProperty(p, params, sc, nil))
			}
		}
		op.Parameters = params
	}
	if decl.ReturnType != nil {
		op.ReturnType = c.resolveTypeExpr(decl.ReturnType, sc, nil)
	}
	c.invokeDecorators(decl.Base().Decorators, op, decl, sc, nil)
	return op
}

func (c *Checker) buildUnionDecl(decl *syntax.UnionStatement, ns *types.Namespace, sc *fileScope) *types.Union {
	key := instKey(decl, nil)
	if t, ok := c.instCache[key]; ok {
		return t.(*types.Union)
	}
	u := &types.Union{Name: decl.Name.Name, Namespace: ns}
	c.instCache[key] = u
	for _, v := range decl.Variants {
		variant := &types.UnionVariant{Name: v.Name, Owner: u}
		if v.Value != nil {
			variant.Type = c.resolveTypeExpr(v.Value, sc, nil)
		}
		u.Variants = append(u.Variants, variant)
	}
	c.invokeDecorators(decl.Base().Decorators, u, decl, sc, nil)
	return u
}

func (c *Checker) buildEnum(decl *syntax.EnumStatement, ns *types.Namespace) *types.Enum {
	key := instKey(decl, nil)
	if t, ok := c.instCache[key]; ok {
		return t.(*types.Enum)
	}
	e := &types.Enum{Name: decl.Name.Name, Namespace: ns}
	c.instCache[key] = e
	for _, m := range decl.Members {
		member := &types.EnumMember{Name: m.Name, Owner: e}
		if m.Value != nil {
			member.Value = c.literalOf(m.Value)
		}
		e.Members = append(e.Members, member)
	}
	return e
}

// literalOf converts a syntax literal node to its interned types.Type,
// without needing scope/subst since literals never reference names.
func (c *Checker) literalOf(n syntax.Node) types.Type {
	switch v := n.(type) {
	case *syntax.StringLiteral:
		return c.literals.String(v.Value)
	case *syntax.NumericLiteral:
		return c.literals.Number(v.Value)
	case *syntax.BooleanLiteral:
		return c.literals.Boolean(v.Value)
	}
	return nil
}

// evalConstExpr evaluates a default-value or decorator-argument
// expression: identifiers/type references resolve to their type, literals
// pass their constant value (spec.md §4.5 "Argument evaluation rules").
func (c *Checker) evalConstExpr(n syntax.Node, sc *fileScope, sb subst) types.Type {
	if lit := c.literalOf(n); lit != nil {
		return lit
	}
	return c.resolveTypeExpr(n, sc, sb)
}

// invokeDecorators fires each attached decorator once, in source order,
// per spec.md §4.5 "Decorator application". A decorator symbol with no
// bound Handle (no external module loader has wired one) is silently
// skipped - this checker has no decorator implementations of its own to
// run, only the invocation contract.
func (c *Checker) invokeDecorators(decs []*syntax.DecoratorExpression, target types.Type, site syntax.Node, sc *fileScope, sb subst) {
	for _, dec := range decs {
		// dec itself carries no parent link (the binder only links
		// declaration-shaped nodes), so the scope walk must start from the
		// declaration site the decorator is attached to.
		sym, reported := c.resolveSymbolPath(dec.Target.Parts, site, sc)
		if sym == nil || sym.Flags&syntax.SymbolDecorator == 0 {
			if !reported {
				c.errorf(diagnostic.CodeInvalidDecoratorTarget, targetAt(sc.source, dec),
					"unknown decorator '@{name}'", map[string]string{"name": joinDotted(dec.Target.Parts)})
			}
			continue
		}
		binding, ok := sym.DecoratorHandle.(*decorator.Binding)
		if !ok || binding == nil {
			continue
		}
		var args []any
		var argTypes []types.Type
		for _, argExpr := range dec.Arguments {
			t := c.evalConstExpr(argExpr, sc, sb)
			args = append(args, t)
			argTypes = append(argTypes, t)
		}
		ctx := &decorator.Context{
			Program: c, Target: target, Args: args,
			Site: targetAt(sc.source, site),
		}
		if d := binding.Invoke(ctx); d != nil {
			c.bag.Add(*d)
			return
		}
		appendAppliedDecorator(target, &types.AppliedDecorator{
			Path: joinDotted(dec.Target.Parts), Args: argTypes,
		})
	}
}

// appendAppliedDecorator records a successful decorator invocation on the
// type it decorated, for introspection (spec.md §3 "decorators" - the
// marker itself, not the side effect, is what spread/is preserve via
// ModelProperty.Decorators).
func appendAppliedDecorator(target types.Type, ad *types.AppliedDecorator) {
	switch v := target.(type) {
	case *types.Model:
		v.Decorators = append(v.Decorators, ad)
	case *types.ModelProperty:
		v.Decorators = append(v.Decorators, ad)
	case *types.Interface:
		v.Decorators = append(v.Decorators, ad)
	case *types.Operation:
		v.Decorators = append(v.Decorators, ad)
	case *types.Union:
		v.Decorators = append(v.Decorators, ad)
	case *types.Enum:
		v.Decorators = append(v.Decorators, ad)
	}
}

// bindTemplateArgs builds the substitution map for one instantiation,
// carrying forward the caller's own outer substitution so a template
// referenced from inside another template's body still resolves its
// enclosing parameters.
func bindTemplateArgs(params []*syntax.TemplateParameterDecl, args []types.Type, outer subst) subst {
	sb := subst{}
	for k, v := range outer {
		sb[k] = v
	}
	for i, tp := range params {
		if i < len(args) {
			sb[tp] = args[i]
		}
	}
	return sb
}

// resolveModelRef resolves a type reference that is expected to name a
// model (extends/is/spread targets), returning nil (with a diagnostic
// already emitted by resolveTypeExpr) if it does not.
func (c *Checker) resolveModelRef(ref *syntax.TypeReferenceExpression, site syntax.Node, sc *fileScope, sb subst) *types.Model {
	t := c.resolveTypeExpr(ref, sc, sb)
	if m, ok := t.(*types.Model); ok {
		return m
	}
	return nil
}

func (c *Checker) resolveInterfaceRef(ref *syntax.TypeReferenceExpression, site syntax.Node, sc *fileScope) *types.Interface {
	sym, _ := c.resolveSymbolPath(ref.Parts, ref, sc)
	if sym == nil {
		return nil
	}
	decl, ok := sym.Decl.(*syntax.InterfaceStatement)
	if !ok {
		return nil
	}
	return c.buildInterface(decl, c.namespaceOfDecl(decl), sc)
}

// namespaceOfDecl walks a declaration's parent chain to find its
// enclosing namespace, building/reusing the matching types.Namespace by
// qualified name (mirrors namespaceFor, but starting from a declaration
// reached via reference resolution rather than top-down traversal).
func (c *Checker) namespaceOfDecl(n syntax.Node) *types.Namespace {
	var names []string
	for cur := n.Base().Parent; cur != nil; cur = cur.Base().Parent {
		if ns, ok := cur.(*syntax.NamespaceStatement); ok {
			names = append([]string{ns.Name.Name}, names...)
		}
	}
	if len(names) == 0 {
		return c.global
	}
	parent := c.global
	qualified := ""
	for _, part := range names {
		if qualified == "" {
			qualified = part
		} else {
			qualified = qualified + "." + part
		}
		if existing, ok := c.nsByQualified[qualified]; ok {
			parent = existing
			continue
		}
		child := types.NewNamespace(qualified, parent)
		c.nsByQualified[qualified] = child
		parent.Namespaces[part] = child
		parent = child
	}
	return parent
}
