// Package testutil provides testing utilities for seqgraph.
//
// This package is intended for use in tests and benchmarks only.
// It provides the reference fixture graphs, seeded token generators and a
// canonical form for comparing graphs built in different stores.
//
// # Fixtures
//
//	fx := testutil.NewXabyz()
//	child := fx.Store.InsertPattern(graph.Pattern{fx.BY, fx.Z})
//
// # Random Token Streams
//
//	rng := testutil.NewRNG(seed)
//	tokens := rng.Tokens(64, "abcd")  // uniform over the alphabet
//	skewed := rng.ZipfTokens(64, "abcdefgh", 1.5)
//
// # Isomorphism
//
//	require.Equal(t, testutil.Canonical(s1), testutil.Canonical(s2))
package testutil
