package models

import (
    "testing"

    "unskewedbag/internal/data"
)

func TestPartitionMinorityIsSmaller(t *testing.T) {
    min, maj := partitionByClass(binaryDataset(10, 40))
    if len(min) != 10 || len(maj) != 40 {
        t.Fatalf("partição (%d, %d), esperado (10, 40)", len(min), len(maj))
    }
    for _, in := range min {
        if in.Class > 0 { t.Fatal("classe positiva no grupo minoritário") }
    }
}

func TestPartitionSwapsWhenPositiveIsRare(t *testing.T) {
    ds := data.NewDataset([]string{"x"}, 2, false)
    for i := 0; i < 40; i++ {
        ds.Add(data.Instance{Values: []float64{float64(i)}, Class: 0})
    }
    for i := 0; i < 10; i++ {
        ds.Add(data.Instance{Values: []float64{float64(100 + i)}, Class: 1})
    }
    min, maj := partitionByClass(ds)
    if len(min) != 10 || len(maj) != 40 {
        t.Fatalf("partição (%d, %d), esperado (10, 40)", len(min), len(maj))
    }
    for _, in := range min {
        if in.Class <= 0 { t.Fatal("classe não positiva no grupo minoritário após troca") }
    }
}

func TestPartitionTieKeepsNonPositiveAsMinority(t *testing.T) {
    min, _ := partitionByClass(binaryDataset(5, 5))
    if len(min) != 5 { t.Fatalf("grupo minoritário com %d instâncias", len(min)) }
    for _, in := range min {
        if in.Class > 0 { t.Fatal("empate deveria manter o grupo de classe não positiva como minoritário") }
    }
}

func TestPartitionPreservesOrder(t *testing.T) {
    min, maj := partitionByClass(binaryDataset(6, 9))
    for i := 1; i < len(min); i++ {
        if min[i].Values[0] <= min[i-1].Values[0] {
            t.Fatal("ordem do dataset não preservada no grupo minoritário")
        }
    }
    for i := 1; i < len(maj); i++ {
        if maj[i].Values[0] <= maj[i-1].Values[0] {
            t.Fatal("ordem do dataset não preservada no grupo majoritário")
        }
    }
}
