package models

import (
    "errors"
    "testing"

    "unskewedbag/internal/data"
)

func separableDataset() *data.Dataset {
    ds := data.NewDataset([]string{"x", "ruido"}, 2, false)
    for i := 0; i < 50; i++ {
        ds.Add(data.Instance{Values: []float64{-1 - float64(i)*0.1, float64(i % 3)}, Class: 0})
        ds.Add(data.Instance{Values: []float64{1 + float64(i)*0.1, float64(i % 5)}, Class: 1})
    }
    return ds
}

func TestDecisionTreeSeparable(t *testing.T) {
    dt := NewDecisionTree()
    dt.MinSamplesSplit = 2
    dt.MaxThresholdsPerFe = 200
    dt.SetSeed(1)
    if err := dt.Train(separableDataset()); err != nil { t.Fatal(err) }

    if got := dt.Predict(data.Instance{Values: []float64{-2, 0}}); got != 0 {
        t.Errorf("lado negativo previsto como %v", got)
    }
    if got := dt.Predict(data.Instance{Values: []float64{2, 0}}); got != 1 {
        t.Errorf("lado positivo previsto como %v", got)
    }
    dist := dt.Distribution(data.Instance{Values: []float64{3, 1}})
    if len(dist) != 2 || dist[1] < 0.9 {
        t.Errorf("distribuição pouco confiante em dados separáveis: %v", dist)
    }
}

func TestDecisionTreeSeedDeterminism(t *testing.T) {
    ds := separableDataset()
    train := func() *DecisionTree {
        dt := NewDecisionTree()
        dt.MinSamplesSplit = 2
        dt.MaxFeatures = 1
        dt.SetSeed(77)
        if err := dt.Train(ds); err != nil { t.Fatal(err) }
        return dt
    }
    a := train()
    b := train()
    for x := -3.0; x <= 3.0; x += 0.25 {
        in := data.Instance{Values: []float64{x, 1}}
        if a.Predict(in) != b.Predict(in) {
            t.Fatalf("mesmo seed divergiu em x = %v", x)
        }
    }
}

func TestDecisionTreeRejectsNumericClass(t *testing.T) {
    ds := data.NewDataset([]string{"x"}, 1, true)
    ds.Add(data.Instance{Values: []float64{1}, Class: 2.5})
    dt := NewDecisionTree()
    if err := dt.Train(ds); err == nil {
        t.Fatal("classe numérica deveria ser rejeitada")
    }
}

func TestDecisionTreeMeasures(t *testing.T) {
    dt := NewDecisionTree()
    dt.MinSamplesSplit = 2
    dt.MaxThresholdsPerFe = 200
    dt.SetSeed(1)
    if err := dt.Train(separableDataset()); err != nil { t.Fatal(err) }

    size, err := dt.GetMeasure("measureTreeSize")
    if err != nil { t.Fatal(err) }
    leaves, err := dt.GetMeasure("measureNumLeaves")
    if err != nil { t.Fatal(err) }
    if size < 3 || leaves < 2 {
        t.Errorf("árvore treinada em dados separáveis deveria ter ao menos um split (size=%v, leaves=%v)", size, leaves)
    }
    if _, err := dt.GetMeasure("measureInexistente"); !errors.Is(err, ErrUnknownMeasure) {
        t.Errorf("medida desconhecida deveria falhar com ErrUnknownMeasure, veio %v", err)
    }
    if len(dt.EnumerateMeasures()) != 3 {
        t.Errorf("enumeração de medidas incompleta: %v", dt.EnumerateMeasures())
    }
}
