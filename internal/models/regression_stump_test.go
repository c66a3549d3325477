package models

import (
    "math"
    "testing"

    "unskewedbag/internal/data"
)

func stepDataset() *data.Dataset {
    ds := data.NewDataset([]string{"x"}, 1, true)
    for i := 0; i < 40; i++ {
        x := float64(i) / 40.0
        y := 1.0
        if x > 0.5 { y = 3.0 }
        ds.Add(data.Instance{Values: []float64{x}, Class: y})
    }
    return ds
}

func TestRegressionStumpRecoversStep(t *testing.T) {
    rs := NewRegressionStump()
    if err := rs.Train(stepDataset()); err != nil { t.Fatal(err) }
    if rs.Feature != 0 {
        t.Fatalf("split na feature %d, esperado 0", rs.Feature)
    }
    if got := rs.Predict(data.Instance{Values: []float64{0.1}}); math.Abs(got-1.0) > 0.2 {
        t.Errorf("lado esquerdo previsto como %v, esperado ~1", got)
    }
    if got := rs.Predict(data.Instance{Values: []float64{0.9}}); math.Abs(got-3.0) > 0.2 {
        t.Errorf("lado direito previsto como %v, esperado ~3", got)
    }
    dist := rs.Distribution(data.Instance{Values: []float64{0.9}})
    if len(dist) != 1 || dist[0] != rs.Predict(data.Instance{Values: []float64{0.9}}) {
        t.Errorf("distribuição deveria embrulhar a predição escalar: %v", dist)
    }
}

func TestRegressionStumpFallsBackToMean(t *testing.T) {
    ds := data.NewDataset([]string{"x"}, 1, true)
    for i := 0; i < 6; i++ {
        ds.Add(data.Instance{Values: []float64{1.0}, Class: float64(i)})
    }
    rs := NewRegressionStump()
    if err := rs.Train(ds); err != nil { t.Fatal(err) }
    if got := rs.Predict(data.Instance{Values: []float64{1.0}}); math.Abs(got-2.5) > 1e-9 {
        t.Errorf("sem split útil a predição deveria ser a média (2.5), veio %v", got)
    }
}

func TestRegressionStumpRejectsNominalClass(t *testing.T) {
    rs := NewRegressionStump()
    if err := rs.Train(binaryDataset(3, 3)); err == nil {
        t.Fatal("classe nominal deveria ser rejeitada")
    }
}
