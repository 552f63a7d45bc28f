package checker

import (
	"github.com/cadl-lang/cadlc/diagnostic"
	"github.com/cadl-lang/cadlc/syntax"
	"github.com/cadl-lang/cadlc/types"
)

// resolveTypeExpr evaluates any type-expression-position syntax node to a
// constructed types.Type, per spec.md §3 "Types" and §4.5 composition
// rules. Literals are interned; everything else that names a
// declaration is instantiated (memoized) on demand.
func (c *Checker) resolveTypeExpr(n syntax.Node, sc *fileScope, sb subst) types.Type {
	switch v := n.(type) {
	case *syntax.TypeReferenceExpression:
		return c.resolveTypeReference(v, sc, sb)
	case *syntax.ArrayExpression:
		return &types.Array{Element: c.resolveTypeExpr(v.Element, sc, sb)}
	case *syntax.TupleExpression:
		t := &types.Tuple{}
		for _, e := range v.Elements {
			t.Elements = append(t.Elements, c.resolveTypeExpr(e, sc, sb))
		}
		return t
	case *syntax.UnionExpression:
		u := &types.Union{}
		seen := map[types.Type]bool{}
		for _, opt := range v.Options {
			t := c.resolveTypeExpr(opt, sc, sb)
			if t == nil || seen[t] {
				continue
			}
			seen[t] = true
			u.Variants = append(u.Variants, &types.UnionVariant{Type: t, Owner: u})
		}
		return u
	case *syntax.IntersectionExpression:
		return c.composeIntersection(v, sc, sb)
	case *syntax.ModelExpression:
		return c.buildAnonymousModel(v, sc, sb)
	case *syntax.StringLiteral, *syntax.NumericLiteral, *syntax.BooleanLiteral:
		return c.literalOf(n)
	}
	return nil
}

func (c *Checker) resolveTypeReference(ref *syntax.TypeReferenceExpression, sc *fileScope, sb subst) types.Type {
	if len(ref.Parts) == 1 {
		if intr, ok := types.LookupIntrinsic(ref.Parts[0]); ok {
			return intr
		}
	}

	sym, reported := c.resolveSymbolPath(ref.Parts, ref, sc)
	if sym == nil {
		// Enum-member access (`Color.Red`) parses as a plain dotted
		// TypeReferenceExpression, not a distinct node kind - exportsOf
		// deliberately doesn't walk into an enum's members the way it
		// walks a namespace's exports, so resolveSymbolPath gives up one
		// segment short. Retry against everything but the trailing
		// segment and look the member up directly.
		if t, ok := c.resolveEnumMember(ref.Parts, ref, sc); ok {
			return t
		}
		if !reported {
			c.errorf(diagnostic.CodeUnresolvedReference, targetAt(sc.source, ref), "unresolved reference to '{name}'",
				map[string]string{"name": joinDotted(ref.Parts)})
		}
		return nil
	}

	if tp, ok := sym.Decl.(*syntax.TemplateParameterDecl); ok {
		if t, ok := sb[tp]; ok {
			return t
		}
		if tp.Default != nil {
			return c.resolveTypeExpr(tp.Default, sc, sb)
		}
		return nil
	}

	args := make([]types.Type, 0, len(ref.Arguments))
	for _, a := range ref.Arguments {
		args = append(args, c.resolveTypeExpr(a, sc, sb))
	}

	switch decl := sym.Decl.(type) {
	case *syntax.ModelStatement:
		return c.buildModel(decl, c.namespaceOfDecl(decl), args, sc, sb)
	case *syntax.InterfaceStatement:
		return c.buildInterface(decl, c.namespaceOfDecl(decl), sc)
	case *syntax.UnionStatement:
		return c.buildUnionDecl(decl, c.namespaceOfDecl(decl), sc)
	case *syntax.EnumStatement:
		return c.buildEnum(decl, c.namespaceOfDecl(decl))
	case *syntax.AliasStatement:
		asb := bindTemplateArgs(decl.TemplateParameters, args, sb)
		return c.resolveTypeExpr(decl.Value, sc, asb)
	}
	return nil
}

// composeIntersection builds the anonymous model spec.md §4.5
// "Intersection (A & B): new anonymous model whose properties are the
// union of both sides; name collisions are diagnostics" describes.
func (c *Checker) composeIntersection(v *syntax.IntersectionExpression, sc *fileScope, sb subst) *types.Model {
	model := &types.Model{IsAnonymous: true}
	seen := map[string]bool{}
	for _, operand := range v.Operands {
		t := c.resolveTypeExpr(operand, sc, sb)
		m, ok := t.(*types.Model)
		if !ok {
			continue
		}
		for _, p := range m.Properties {
			if seen[p.Name] {
				c.errorf(diagnostic.CodeDuplicateProperty, targetAt(sc.source, v),
					"duplicate property '{name}' in intersection", map[string]string{"name": p.Name})
				continue
			}
			seen[p.Name] = true
			model.Properties = append(model.Properties, &types.ModelProperty{
				Name: p.Name, Type: p.Type, Optional: p.Optional, Default: p.Default,
				Owner: model, SourceProperty: p, Decorators: p.Decorators,
			})
		}
	}
	return model
}

// buildAnonymousModel constructs the inline `{ ... }` model expression
// form (operation parameter lists, intersection/union operands, etc.).
func (c *Checker) buildAnonymousModel(expr *syntax.ModelExpression, sc *fileScope, sb subst) *types.Model {
	model := &types.Model{IsAnonymous: true}
	seen := map[string]bool{}
	for _, member := range expr.Properties {
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
	return model
}

// resolveEnumMember handles `Color.Red`-shaped defaults and decorator
// arguments: parts up to the last segment must resolve to an enum
// declaration, and the last segment names one of its members (spec.md §3
// "Types" - enum member access).
func (c *Checker) resolveEnumMember(parts []string, site syntax.Node, sc *fileScope) (types.Type, bool) {
	if len(parts) < 2 {
		return nil, false
	}
	sym, _ := c.resolveSymbolPath(parts[:len(parts)-1], site, sc)
	if sym == nil {
		return nil, false
	}
	decl, ok := sym.Decl.(*syntax.EnumStatement)
	if !ok {
		return nil, false
	}
	enum := c.buildEnum(decl, c.namespaceOfDecl(decl))
	member := parts[len(parts)-1]
	for _, m := range enum.Members {
		if m.Name == member {
			return m.Value, true
		}
	}
	return nil, false
}
