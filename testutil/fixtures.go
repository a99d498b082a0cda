package testutil

import "github.com/hupe1980/seqgraph/graph"

// Xabyz is the fixture graph over the tokens a, b, x, y, z.
type Xabyz struct {
	Store *graph.Store

	A, B, X, Y, Z graph.Child

	AB, BY, YZ, XA   graph.Child
	XAB, XABY, XABYZ graph.Child
}

// NewXabyz builds
//
//	ab    = [a, b]
//	by    = [b, y]
//	yz    = [y, z]
//	xa    = [x, a]
//	xab   = [x, ab]   | [xa, b]
//	xaby  = [xab, y]  | [xa, by]
//	xabyz = [xaby, z] | [xab, yz]
func NewXabyz() *Xabyz {
	s := graph.New()
	fx := &Xabyz{Store: s}
	fx.A = s.InsertToken("a")
	fx.B = s.InsertToken("b")
	fx.X = s.InsertToken("x")
	fx.Y = s.InsertToken("y")
	fx.Z = s.InsertToken("z")

	fx.AB = s.InsertPattern(graph.Pattern{fx.A, fx.B})
	fx.BY = s.InsertPattern(graph.Pattern{fx.B, fx.Y})
	fx.YZ = s.InsertPattern(graph.Pattern{fx.Y, fx.Z})
	fx.XA = s.InsertPattern(graph.Pattern{fx.X, fx.A})
	fx.XAB, _ = s.InsertPatterns([]graph.Pattern{{fx.X, fx.AB}, {fx.XA, fx.B}})
	fx.XABY, _ = s.InsertPatterns([]graph.Pattern{{fx.XAB, fx.Y}, {fx.XA, fx.BY}})
	fx.XABYZ, _ = s.InsertPatterns([]graph.Pattern{{fx.XABY, fx.Z}, {fx.XAB, fx.YZ}})
	return fx
}

// Heldld is the fixture graph over the tokens h, e, l, d.
type Heldld struct {
	Store *graph.Store

	H, E, L, D graph.Child

	LD, HELDLD graph.Child
}

// NewHeldld builds
//
//	ld     = [l, d]
//	heldld = [h, e, ld, ld]
func NewHeldld() *Heldld {
	s := graph.New()
	fx := &Heldld{Store: s}
	fx.H = s.InsertToken("h")
	fx.E = s.InsertToken("e")
	fx.L = s.InsertToken("l")
	fx.D = s.InsertToken("d")
	fx.LD = s.InsertPattern(graph.Pattern{fx.L, fx.D})
	fx.HELDLD = s.InsertPattern(graph.Pattern{fx.H, fx.E, fx.LD, fx.LD})
	return fx
}
