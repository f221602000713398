// SPDX-License-Identifier: Unlicense OR MIT

package inline

import (
	"testing"

	"golang.org/x/image/math/fixed"

	"github.com/subrandr/subrandr/document"
)

// TestDistributeRubyClustersSatisfiesCenterTolerance exercises spec.md's
// §8 scenario 6 directly: "each annotation cluster's center is within
// ±0.5·base_cluster_width of its paired base cluster's center." The base
// has fewer clusters ("ab") than the annotation ("xyz"), the uneven case
// a flat whole-line shift cannot satisfy for every cluster.
func TestDistributeRubyClustersSatisfiesCenterTolerance(t *testing.T) {
	e := testEngine(t)
	style := plainStyle()

	baseLine, err := e.shapeUnbreakable(flattenRubyNodes([]document.InlineNode{textNode("ab", style)}, style))
	if err != nil {
		t.Fatal(err)
	}
	annLine, err := e.shapeUnbreakable(flattenRubyNodes([]document.InlineNode{textNode("xyz", style)}, style))
	if err != nil {
		t.Fatal(err)
	}

	distributeRubyClusters(&baseLine, &annLine)

	if len(baseLine.Runs) != 2 {
		t.Fatalf("expected 2 base clusters after redistribution, got %d", len(baseLine.Runs))
	}
	if len(annLine.Runs) != 3 {
		t.Fatalf("expected 3 annotation clusters after redistribution, got %d", len(annLine.Runs))
	}

	for _, ar := range annLine.Runs {
		annCenter := ar.XOffset + ar.Face.Advance/2

		var nearestDist, nearestWidth fixed.Int26_6 = 1 << 30, 0
		for _, br := range baseLine.Runs {
			baseCenter := br.XOffset + br.Face.Advance/2
			d := annCenter - baseCenter
			if d < 0 {
				d = -d
			}
			if d < nearestDist {
				nearestDist, nearestWidth = d, br.Face.Advance
			}
		}

		if tolerance := nearestWidth / 2; nearestDist > tolerance {
			t.Fatalf("annotation cluster center %v is %v from its nearest base cluster center, exceeding the ±0.5·base_cluster_width tolerance (%v)", annCenter, nearestDist, tolerance)
		}
	}
}

// TestDistributeRubyClustersLeavesBaseUnchangedWithoutAnnotation matches
// the pre-existing behavior for a ruby container with no annotation:
// base clusters keep their natural positions.
func TestDistributeRubyClustersLeavesBaseUnchangedWithoutAnnotation(t *testing.T) {
	e := testEngine(t)
	style := plainStyle()

	baseLine, err := e.shapeUnbreakable(flattenRubyNodes([]document.InlineNode{textNode("ab", style)}, style))
	if err != nil {
		t.Fatal(err)
	}
	naturalWidth := baseLine.Width
	var annLine LineFragment

	total := distributeRubyClusters(&baseLine, &annLine)
	if total != naturalWidth {
		t.Fatalf("expected total width %v to equal the base's own natural width without an annotation, got %v", naturalWidth, total)
	}
}
