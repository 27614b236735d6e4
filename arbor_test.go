package arbor_test

import (
	"fmt"
	"testing"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/tree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreate(t *testing.T) {
	b := arbor.Create(tree.WithName("facade"))
	assert.Equal(t, 0, b.NodeCount())
	assert.Equal(t, "facade", b.Name())
	assert.Equal(t, "digraph {\n}\n", b.Render())

	require.NoError(t, b.AddBranch(0, nil))
	assert.Equal(t, 1, b.NodeCount())
}

func TestErrorFunction(t *testing.T) {
	err := arbor.ErrorFunction()
	assert.ErrorIs(t, err, domain.ErrAlwaysBreaks)
	assert.EqualError(t, err, "This always breaks!")
}

func ExampleCreate() {
	t := arbor.Create()
	_ = t.AddBranch(0, nil)
	_ = t.AddBranch(1, tree.Under(0))
	_ = t.AddBranch(2, tree.Under(0))
	_ = t.AddLeaf(0, 2)
	if err := t.AddLeaf(1, 3); err != nil {
		fmt.Println(err)
	}
	fmt.Print(t)
	fmt.Printf("%d nodes in this tree\n", t.NodeCount())
	// Output:
	// Branch_3 doesn't exist!
	// digraph {
	//     0 [ label = "(Branch_0)" ]
	//     1 [ label = "(Branch_1)" ]
	//     2 [ label = "(Branch_2)" ]
	//     3 [ label = "(Leaf_0)" ]
	//     4 [ label = "(Leaf_1)" ]
	//     0 -> 1 [ label = "0" ]
	//     0 -> 2 [ label = "1" ]
	//     2 -> 3 [ label = "2" ]
	// }
	// 5 nodes in this tree
}
