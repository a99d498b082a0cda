package seqgraph_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/hupe1980/seqgraph"
	"github.com/hupe1980/seqgraph/blobstore"
)

func Example() {
	ctx := context.Background()

	g, err := seqgraph.New()
	if err != nil {
		panic(err)
	}

	root, err := g.ReadString(ctx, "heldld")
	if err != nil {
		panic(err)
	}
	label, _ := g.Label(root.ID)
	fmt.Println(label, root.Width)

	again, _ := g.InsertTokens(ctx, strings.Split("heldld", ""))
	fmt.Println(again == root)

	// Output:
	// heldld 6
	// true
}

func ExampleGraph_Snapshot() {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	g, _ := seqgraph.New(seqgraph.WithCompression(seqgraph.CompressionZSTD))
	root, _ := g.InsertTokens(ctx, []string{"a", "b", "c"})

	m, err := g.Snapshot(ctx, store, "docs")
	if err != nil {
		panic(err)
	}
	fmt.Println(m.Seq, m.Stats.Vertices)

	restored, err := seqgraph.Restore(ctx, store, "docs")
	if err != nil {
		panic(err)
	}
	label, _ := restored.Label(root.ID)
	fmt.Println(label)

	// Output:
	// 1 4
	// abc
}
