package inference

import (
	"fmt"
	"math"
)

// TreeNode is one node of a binary decision tree. Leaves have Left == Right == -1.
// Samples go left when x[Feature] <= Threshold.
type TreeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

type Tree struct {
	Nodes []TreeNode `json:"nodes"`
}

func (t *Tree) leaf(x []float64) (float64, error) {
	i := 0
	for steps := 0; steps <= len(t.Nodes); steps++ {
		if i < 0 || i >= len(t.Nodes) {
			return 0, fmt.Errorf("tree node index %d out of range", i)
		}
		n := t.Nodes[i]
		if n.Left < 0 && n.Right < 0 {
			return n.Value, nil
		}
		if n.Feature < 0 || n.Feature >= len(x) {
			return 0, fmt.Errorf("tree splits on feature %d of %d", n.Feature, len(x))
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
	return 0, fmt.Errorf("tree does not terminate")
}

// TreeEnsemble averages leaf values for regression and takes a majority vote
// of leaf class indices for classification.
type TreeEnsemble struct {
	Features int    `json:"n_features"`
	Classes  int    `json:"n_classes"`
	Trees    []Tree `json:"trees"`
}

func (m *TreeEnsemble) validate() error {
	if m.Features <= 0 {
		return fmt.Errorf("tree ensemble must declare n_features")
	}
	if len(m.Trees) == 0 {
		return fmt.Errorf("tree ensemble has no trees")
	}
	for i, t := range m.Trees {
		if len(t.Nodes) == 0 {
			return fmt.Errorf("tree %d has no nodes", i)
		}
	}
	return nil
}

func (m *TreeEnsemble) NumFeatures() int { return m.Features }

func (m *TreeEnsemble) NumClasses() int { return m.Classes }

func (m *TreeEnsemble) Predict(x []float64) (float64, error) {
	if err := checkWidth(m.Features, x); err != nil {
		return 0, err
	}
	var sum float64
	for _, t := range m.Trees {
		v, err := t.leaf(x)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	y := sum / float64(len(m.Trees))
	return y, checkFinite(y)
}

func (m *TreeEnsemble) PredictClass(x []float64) (int, error) {
	if err := checkWidth(m.Features, x); err != nil {
		return 0, err
	}
	votes := make(map[int]int)
	best, bestVotes := 0, -1
	for _, t := range m.Trees {
		v, err := t.leaf(x)
		if err != nil {
			return 0, err
		}
		class := int(math.Round(v))
		votes[class]++
		// ties go to the lower class index
		if votes[class] > bestVotes || (votes[class] == bestVotes && class < best) {
			best, bestVotes = class, votes[class]
		}
	}
	return best, nil
}
