package data

import (
    "math"
    "testing"
)

func TestRemoveMissingClass(t *testing.T) {
    ds := NewDataset([]string{"x"}, 2, false)
    ds.Add(Instance{Values: []float64{1}, Class: 0})
    ds.Add(Instance{Values: []float64{2}, Class: math.NaN()})
    ds.Add(Instance{Values: []float64{3}, Class: 1})

    out := ds.RemoveMissingClass()
    if out.NumInstances() != 2 {
        t.Fatalf("restaram %d instâncias, esperado 2", out.NumInstances())
    }
    for _, in := range out.Instances {
        if in.ClassMissing() { t.Fatal("instância sem classe sobreviveu ao filtro") }
    }
    if ds.NumInstances() != 3 {
        t.Error("o dataset original não deveria ser alterado")
    }
}

func TestEmptyKeepsSchema(t *testing.T) {
    ds := NewDataset([]string{"a", "b"}, 3, true)
    ds.Add(Instance{Values: []float64{1, 2}, Class: 0.5})

    e := ds.Empty()
    if e.NumInstances() != 0 {
        t.Error("Empty deveria descartar as instâncias")
    }
    if len(e.Attributes) != 2 || e.NumClasses != 3 || !e.ClassNumeric {
        t.Error("Empty deveria preservar o esquema")
    }
}

func TestClassMissing(t *testing.T) {
    if (Instance{Class: 0}).ClassMissing() {
        t.Error("classe 0 não é ausente")
    }
    if !(Instance{Class: math.NaN()}).ClassMissing() {
        t.Error("NaN deveria marcar classe ausente")
    }
}
