package data

import (
    "encoding/csv"
    "os"
    "path/filepath"
    "testing"
)

func readAll(t *testing.T, path string) [][]string {
    t.Helper()
    f, err := os.Open(path)
    if err != nil { t.Fatal(err) }
    defer f.Close()
    recs, err := csv.NewReader(f).ReadAll()
    if err != nil { t.Fatal(err) }
    return recs
}

func TestGenerateSyntheticExpenses(t *testing.T) {
    path := filepath.Join(t.TempDir(), "despesas.csv")
    if err := GenerateSyntheticExpenses(500, 0.05, 42, path); err != nil {
        t.Fatal(err)
    }
    recs := readAll(t, path)
    if len(recs) != 501 {
        t.Fatalf("%d linhas, esperado cabeçalho + 500", len(recs))
    }
    fraudCol := len(recs[0]) - 1
    if recs[0][fraudCol] != "fraud" {
        t.Fatalf("última coluna deveria ser fraud, veio %q", recs[0][fraudCol])
    }
    fraudes := 0
    for _, rec := range recs[1:] {
        if rec[fraudCol] == "1" { fraudes++ }
    }
    if fraudes == 0 || fraudes > 250 {
        t.Errorf("%d fraudes em 500; a classe fraudulenta deveria existir e ser minoritária", fraudes)
    }
}

func TestGenerateIsDeterministic(t *testing.T) {
    dir := t.TempDir()
    p1 := filepath.Join(dir, "a.csv")
    p2 := filepath.Join(dir, "b.csv")
    if err := GenerateSyntheticExpenses(200, 0.05, 7, p1); err != nil { t.Fatal(err) }
    if err := GenerateSyntheticExpenses(200, 0.05, 7, p2); err != nil { t.Fatal(err) }

    b1, err := os.ReadFile(p1)
    if err != nil { t.Fatal(err) }
    b2, err := os.ReadFile(p2)
    if err != nil { t.Fatal(err) }
    if string(b1) != string(b2) {
        t.Error("mesmo seed produziu datasets distintos")
    }
}
