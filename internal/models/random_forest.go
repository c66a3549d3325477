package models

import (
    "math"
    "math/rand"

    "gonum.org/v1/gonum/floats"

    "unskewedbag/internal/data"
)

// RandomForest é um preditor base alternativo: bootstrap clássico com
// subamostragem de atributos. Seedável, para reprodutibilidade membro a membro.
type RandomForest struct {
    NEstimators        int
    MaxDepth           int
    MinSamples         int
    MaxThresholdsPerFe int
    MaxFeatures        int
    Seed               int64
    NumClasses         int
    Trees              []*DecisionTree

    rng *rand.Rand
}

func NewRandomForest() *RandomForest {
    return &RandomForest{NEstimators: 30, MaxDepth: 6, MinSamples: 20, MaxThresholdsPerFe: 32}
}

func (rf *RandomForest) Name() string { return "RandomForest" }

func (rf *RandomForest) SetSeed(seed int64) {
    rf.Seed = seed
    rf.rng = rand.New(rand.NewSource(seed))
}

func (rf *RandomForest) Train(ds *data.Dataset) error {
    if rf.NEstimators <= 0 { rf.NEstimators = 30 }
    if rf.rng == nil { rf.rng = rand.New(rand.NewSource(rf.Seed)) }
    rf.NumClasses = ds.NumClasses
    n := ds.NumInstances()
    nFeats := len(ds.Attributes)
    maxFeats := rf.MaxFeatures
    if maxFeats <= 0 {
        maxFeats = int(math.Max(1, math.Min(float64(nFeats), math.Sqrt(float64(nFeats)))))
    }
    rf.Trees = make([]*DecisionTree, 0, rf.NEstimators)
    for k := 0; k < rf.NEstimators; k++ {
        boot := ds.Empty()
        for i := 0; i < n; i++ {
            boot.Add(ds.Instances[rf.rng.Intn(n)])
        }
        dt := NewDecisionTree()
        dt.MaxDepth = rf.MaxDepth
        dt.MinSamplesSplit = rf.MinSamples
        dt.MaxThresholdsPerFe = rf.MaxThresholdsPerFe
        dt.MaxFeatures = maxFeats
        dt.SetSeed(rf.rng.Int63())
        if err := dt.Train(boot); err != nil { return err }
        rf.Trees = append(rf.Trees, dt)
    }
    return nil
}

func (rf *RandomForest) Predict(in data.Instance) float64 {
    dist := rf.Distribution(in)
    best := 0
    for c := 1; c < len(dist); c++ {
        if dist[c] > dist[best] { best = c }
    }
    return float64(best)
}

func (rf *RandomForest) Distribution(in data.Instance) []float64 {
    if len(rf.Trees) == 0 { return uniformDist(rf.NumClasses) }
    out := make([]float64, rf.NumClasses)
    for _, dt := range rf.Trees {
        floats.Add(out, dt.Distribution(in))
    }
    floats.Scale(1/float64(len(rf.Trees)), out)
    return out
}
