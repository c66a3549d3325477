package models

import (
    "errors"
    "fmt"
    "math"
    "math/rand"
    "strings"

    "unskewedbag/internal/data"
)

type DTNode struct {
    Feature   int
    Threshold float64
    Left      *DTNode
    Right     *DTNode
    IsLeaf    bool
    Dist      []float64
}

type DecisionTree struct {
    MaxDepth           int
    MinSamplesSplit    int
    MaxThresholdsPerFe int
    MaxFeatures        int
    Seed               int64
    NumClasses         int
    Root               *DTNode

    rng *rand.Rand
}

func NewDecisionTree() *DecisionTree {
    return &DecisionTree{MaxDepth: 6, MinSamplesSplit: 20, MaxThresholdsPerFe: 64}
}

func (dt *DecisionTree) Name() string { return "DecisionTree" }

// SetSeed dá à árvore um stream próprio, independente do stream mestre.
func (dt *DecisionTree) SetSeed(seed int64) {
    dt.Seed = seed
    dt.rng = rand.New(rand.NewSource(seed))
}

func (dt *DecisionTree) Train(ds *data.Dataset) error {
    if ds.ClassNumeric {
        return errors.New("árvore de decisão requer classe nominal")
    }
    if dt.rng == nil {
        dt.rng = rand.New(rand.NewSource(dt.Seed))
    }
    dt.NumClasses = ds.NumClasses
    idx := make([]int, ds.NumInstances())
    for i := range idx { idx[i] = i }
    dt.Root = dt.build(ds, idx, 0)
    return nil
}

func (dt *DecisionTree) Predict(in data.Instance) float64 {
    dist := dt.Distribution(in)
    best := 0
    for c := 1; c < len(dist); c++ {
        if dist[c] > dist[best] { best = c }
    }
    return float64(best)
}

func (dt *DecisionTree) Distribution(in data.Instance) []float64 {
    n := dt.Root
    if n == nil { return uniformDist(dt.NumClasses) }
    for !n.IsLeaf {
        if in.Values[n.Feature] <= n.Threshold { n = n.Left } else { n = n.Right }
        if n == nil { return uniformDist(dt.NumClasses) }
    }
    out := make([]float64, len(n.Dist))
    copy(out, n.Dist)
    return out
}

func (dt *DecisionTree) build(ds *data.Dataset, idx []int, depth int) *DTNode {
    node := &DTNode{}
    counts := classCounts(ds, idx, dt.NumClasses)
    if len(idx) < dt.MinSamplesSplit || depth >= dt.MaxDepth || pureCounts(counts) {
        node.IsLeaf = true
        node.Dist = normalizeCounts(counts)
        return node
    }

    bestFeature := -1
    bestThr := 0.0
    bestImp := math.MaxFloat64
    leftIdxBest := []int{}
    rightIdxBest := []int{}

    nFeats := len(ds.Attributes)
    feats := dt.pickFeatures(nFeats)
    for _, f := range feats {
        cand := dt.candidateThresholds(ds, idx, f)
        for _, thr := range cand {
            lIdx, rIdx := splitIdx(ds, idx, f, thr)
            if len(lIdx) == 0 || len(rIdx) == 0 { continue }
            imp := giniImpurity(ds, lIdx, rIdx, dt.NumClasses)
            if imp < bestImp {
                bestImp = imp
                bestFeature = f
                bestThr = thr
                leftIdxBest = lIdx
                rightIdxBest = rIdx
            }
        }
    }

    if bestFeature == -1 {
        node.IsLeaf = true
        node.Dist = normalizeCounts(counts)
        return node
    }
    node.Feature = bestFeature
    node.Threshold = bestThr
    node.Left = dt.build(ds, leftIdxBest, depth+1)
    node.Right = dt.build(ds, rightIdxBest, depth+1)
    return node
}

func classCounts(ds *data.Dataset, idx []int, numClasses int) []float64 {
    counts := make([]float64, numClasses)
    for _, i := range idx {
        c := int(ds.Instances[i].Class)
        if c >= 0 && c < numClasses { counts[c]++ }
    }
    return counts
}

func pureCounts(counts []float64) bool {
    nonZero := 0
    for _, c := range counts { if c > 0 { nonZero++ } }
    return nonZero <= 1
}

func normalizeCounts(counts []float64) []float64 {
    total := 0.0
    for _, c := range counts { total += c }
    out := make([]float64, len(counts))
    if total == 0 { return uniformDist(len(counts)) }
    for i, c := range counts { out[i] = c / total }
    return out
}

func uniformDist(numClasses int) []float64 {
    if numClasses <= 0 { return []float64{} }
    out := make([]float64, numClasses)
    for i := range out { out[i] = 1.0 / float64(numClasses) }
    return out
}

func splitIdx(ds *data.Dataset, idx []int, f int, thr float64) ([]int, []int) {
    l := make([]int, 0, len(idx))
    r := make([]int, 0, len(idx))
    for _, i := range idx {
        if ds.Instances[i].Values[f] <= thr { l = append(l, i) } else { r = append(r, i) }
    }
    return l, r
}

func giniImpurity(ds *data.Dataset, lIdx, rIdx []int, numClasses int) float64 {
    g := func(ids []int) float64 {
        if len(ids) == 0 { return 0 }
        counts := classCounts(ds, ids, numClasses)
        n := float64(len(ids))
        gini := 1.0
        for _, c := range counts {
            p := c / n
            gini -= p * p
        }
        return gini
    }
    wl := float64(len(lIdx))
    wr := float64(len(rIdx))
    n := wl + wr
    return (wl/n)*g(lIdx) + (wr/n)*g(rIdx)
}

func (dt *DecisionTree) candidateThresholds(ds *data.Dataset, idx []int, f int) []float64 {
    values := make([]float64, len(idx))
    for j, i := range idx { values[j] = ds.Instances[i].Values[f] }
    for i := range values {
        j := dt.rng.Intn(len(values))
        values[i], values[j] = values[j], values[i]
    }
    m := int(math.Min(float64(dt.MaxThresholdsPerFe), float64(len(values))))
    return values[:m]
}

func (dt *DecisionTree) pickFeatures(nFeats int) []int {
    if dt.MaxFeatures <= 0 || dt.MaxFeatures >= nFeats {
        out := make([]int, nFeats)
        for i := 0; i < nFeats; i++ { out[i] = i }
        return out
    }
    idx := make([]int, nFeats)
    for i := 0; i < nFeats; i++ { idx[i] = i }
    for i := range idx {
        j := dt.rng.Intn(nFeats)
        idx[i], idx[j] = idx[j], idx[i]
    }
    out := make([]int, dt.MaxFeatures)
    copy(out, idx[:dt.MaxFeatures])
    return out
}

// Medidas diagnósticas da estrutura da árvore.
func (dt *DecisionTree) EnumerateMeasures() []string {
    return []string{"measureTreeSize", "measureNumLeaves", "measureMaxDepth"}
}

func (dt *DecisionTree) GetMeasure(name string) (float64, error) {
    switch strings.ToLower(name) {
    case "measuretreesize":
        return float64(countNodes(dt.Root)), nil
    case "measurenumleaves":
        return float64(countLeaves(dt.Root)), nil
    case "measuremaxdepth":
        return float64(treeDepth(dt.Root)), nil
    }
    return 0, fmt.Errorf("%w: %s", ErrUnknownMeasure, name)
}

func countNodes(n *DTNode) int {
    if n == nil { return 0 }
    return 1 + countNodes(n.Left) + countNodes(n.Right)
}

func countLeaves(n *DTNode) int {
    if n == nil { return 0 }
    if n.IsLeaf { return 1 }
    return countLeaves(n.Left) + countLeaves(n.Right)
}

func treeDepth(n *DTNode) int {
    if n == nil || n.IsLeaf { return 0 }
    l := treeDepth(n.Left)
    r := treeDepth(n.Right)
    if l > r { return 1 + l }
    return 1 + r
}
