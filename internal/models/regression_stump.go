package models

import (
    "errors"
    "math"
    "sort"

    "unskewedbag/internal/data"
)

// RegressionStump é um regressor de um único split, escolhido pelo menor erro
// quadrático. Serve de preditor base para classes numéricas.
type RegressionStump struct {
    MinSamples         int
    MaxThresholdsPerFe int

    Feature   int
    Threshold float64
    LeftVal   float64
    RightVal  float64
    Mean      float64
    Fitted    bool
}

func NewRegressionStump() *RegressionStump {
    return &RegressionStump{MinSamples: 5, MaxThresholdsPerFe: 32, Feature: -1}
}

func (rs *RegressionStump) Name() string { return "RegressionStump" }

func (rs *RegressionStump) Train(ds *data.Dataset) error {
    if !ds.ClassNumeric {
        return errors.New("stump de regressão requer classe numérica")
    }
    n := ds.NumInstances()
    rs.Feature = -1
    rs.Fitted = true
    if n == 0 { return nil }

    sum := 0.0
    for _, in := range ds.Instances { sum += in.Class }
    rs.Mean = sum / float64(n)

    bestSSE := math.MaxFloat64
    nFeats := len(ds.Attributes)
    for j := 0; j < nFeats; j++ {
        cands := rs.candidateThresholds(ds, j)
        for _, thr := range cands {
            leftSum, leftCount := 0.0, 0.0
            rightSum, rightCount := 0.0, 0.0
            for _, in := range ds.Instances {
                if in.Values[j] <= thr { leftSum += in.Class; leftCount++ } else { rightSum += in.Class; rightCount++ }
            }
            if int(leftCount) < rs.MinSamples || int(rightCount) < rs.MinSamples { continue }
            leftAvg := leftSum / leftCount
            rightAvg := rightSum / rightCount

            sse := 0.0
            for _, in := range ds.Instances {
                var d float64
                if in.Values[j] <= thr { d = in.Class - leftAvg } else { d = in.Class - rightAvg }
                sse += d * d
            }
            if sse < bestSSE {
                bestSSE = sse
                rs.Feature = j
                rs.Threshold = thr
                rs.LeftVal = leftAvg
                rs.RightVal = rightAvg
            }
        }
    }
    return nil
}

func (rs *RegressionStump) Predict(in data.Instance) float64 {
    if rs.Feature < 0 { return rs.Mean }
    if in.Values[rs.Feature] <= rs.Threshold { return rs.LeftVal }
    return rs.RightVal
}

func (rs *RegressionStump) Distribution(in data.Instance) []float64 {
    return []float64{rs.Predict(in)}
}

func (rs *RegressionStump) candidateThresholds(ds *data.Dataset, j int) []float64 {
    nCand := rs.MaxThresholdsPerFe
    if nCand <= 0 { nCand = 16 }
    n := ds.NumInstances()
    vals := make([]float64, n)
    for i, in := range ds.Instances { vals[i] = in.Values[j] }
    sort.Float64s(vals)
    out := make([]float64, 0, nCand)
    for k := 1; k < nCand; k++ {
        idx := int(math.Round(float64(k) / float64(nCand) * float64(n-1)))
        if idx <= 0 || idx >= n { continue }
        thr := vals[idx]
        if len(out) == 0 || thr != out[len(out)-1] {
            out = append(out, thr)
        }
    }
    if len(out) == 0 {
        sum := 0.0
        for i := 0; i < n; i++ { sum += vals[i] }
        out = append(out, sum/float64(n))
    }
    return out
}
