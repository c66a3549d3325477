package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"unskewedbag/internal/data"
	"unskewedbag/internal/features"
	"unskewedbag/internal/models"
)

// Analisa o efeito da chance minoritária do Roughly Balanced Bagging sobre a
// razão de classes dos bags e sobre o F1 no holdout.
func main() {
    dataPath := flag.String("data", "data/synthetic.csv", "CSV de entrada")
    iterations := flag.Int("iterations", 10, "Número de membros do ensemble")
    maxDepth := flag.Int("max_depth", 6, "Profundidade máxima da árvore base")
    minSamples := flag.Int("min_samples", 20, "Mínimo de amostras para split")
    points := flag.Int("points", 9, "Quantidade de valores de chance na varredura")
    repeats := flag.Int("repeats", 5, "Treinamentos por valor de chance (seeds distintos)")
    outImg := flag.String("out_img", "cmd/api/static/rbb_sweep.png", "PNG de saída")
    outCsv := flag.String("out_csv", "data/rbb_sweep.csv", "CSV de saída")
    flag.Parse()

    ds, err := loadDataset(*dataPath)
    if err != nil { fmt.Println("Falha ao carregar dataset:", err); return }
    if ds.NumInstances() == 0 { fmt.Println("Dataset vazio"); return }

    split := int(0.8 * float64(ds.NumInstances()))
    dsTrain := ds.Empty()
    dsTrain.Instances = ds.Instances[:split]
    dsTest := ds.Empty()
    dsTest.Instances = ds.Instances[split:]

    chances := make([]float64, 0, *points)
    for i := 1; i <= *points; i++ {
        chances = append(chances, float64(i)/float64(*points+1))
    }

    ratios := make([]float64, len(chances))
    f1s := make([]float64, len(chances))
    for k, chance := range chances {
        ratioRuns := make([]float64, 0, *repeats)
        f1Runs := make([]float64, 0, *repeats)
        for r := 0; r < *repeats; r++ {
            u := models.NewUnskewedBagging(func() models.Model {
                dt := models.NewDecisionTree()
                dt.MaxDepth = *maxDepth
                dt.MinSamplesSplit = *minSamples
                return dt
            })
            u.Iterations = *iterations
            u.UseRoughlyBalanced = true
            u.MinorityChance = chance
            u.Seed = int64(1000*k + r)
            if err := u.Fit(dsTrain); err != nil { fmt.Println("Falha treino:", err); return }
            if u.MinorityGoal > 0 {
                ratioRuns = append(ratioRuns, float64(u.MajorityGoal)/float64(u.MinorityGoal))
            }
            f1Runs = append(f1Runs, holdoutF1(u, dsTest))
        }
        ratios[k] = stat.Mean(ratioRuns, nil)
        f1s[k] = stat.Mean(f1Runs, nil)
        fmt.Printf("chance=%.2f | razão média maj/min=%.3f | F1=%.3f\n", chance, ratios[k], f1s[k])
    }

    if err := writeCSV(*outCsv, chances, ratios, f1s); err != nil {
        fmt.Println("Erro ao salvar CSV:", err)
    } else {
        fmt.Println("Varredura salva em:", *outCsv)
    }

    if err := plotSweep(*outImg, chances, ratios, f1s); err != nil {
        fmt.Println("Erro ao salvar PNG:", err)
    } else {
        fmt.Println("Gráfico salvo em:", *outImg)
    }
}

func loadDataset(path string) (*data.Dataset, error) {
    f, err := os.Open(path)
    if err != nil { return nil, err }
    defer f.Close()
    r := csv.NewReader(f)
    rows, err := r.ReadAll()
    if err != nil { return nil, err }
    if len(rows) < 2 { return nil, fmt.Errorf("CSV inválido: %s", path) }
    ds := features.NewFraudDataset()
    for i := 1; i < len(rows); i++ {
        row := rows[i]
        reqDate, _ := time.Parse("2006-01-02", row[5])
        travelDate, _ := time.Parse("2006-01-02", row[6])
        amount, _ := strconv.ParseFloat(row[9], 64)
        fraud, _ := strconv.Atoi(row[14])
        e := features.BuildExpense(
            row[0], row[1], row[2], row[3], row[4],
            reqDate, travelDate,
            row[7], row[8],
            amount,
            row[10], row[11], row[12], row[13],
        )
        ds.Add(features.ToInstance(e, fraud))
    }
    return ds, nil
}

func holdoutF1(u *models.UnskewedBagging, ds *data.Dataset) float64 {
    var tp, fp, fn int
    for _, in := range ds.Instances {
        s, err := u.Score(in)
        if err != nil { return 0 }
        pred := 0
        if s >= 0.5 { pred = 1 }
        actual := int(in.Class)
        if pred == 1 && actual == 1 { tp++ } else if pred == 1 && actual == 0 { fp++ } else if pred == 0 && actual == 1 { fn++ }
    }
    var precision, recall float64
    if tp+fp > 0 { precision = float64(tp) / float64(tp+fp) }
    if tp+fn > 0 { recall = float64(tp) / float64(tp+fn) }
    if precision+recall == 0 { return 0 }
    return 2 * precision * recall / (precision + recall)
}

func writeCSV(path string, chances, ratios, f1s []float64) error {
    if err := os.MkdirAll("data", 0o755); err != nil { return err }
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    w := csv.NewWriter(f)
    defer w.Flush()
    if err := w.Write([]string{"minority_chance", "mean_ratio", "mean_f1"}); err != nil { return err }
    for i := range chances {
        rec := []string{
            fmt.Sprintf("%.4f", chances[i]),
            fmt.Sprintf("%.6f", ratios[i]),
            fmt.Sprintf("%.6f", f1s[i]),
        }
        if err := w.Write(rec); err != nil { return err }
    }
    return nil
}

func plotSweep(path string, chances, ratios, f1s []float64) error {
    p := plot.New()
    p.Title.Text = "Varredura da Chance Minoritária (RBB)"
    p.X.Label.Text = "Chance minoritária"
    p.Y.Label.Text = "Valor"

    toXY := func(xs, ys []float64) plotter.XYs {
        pts := make(plotter.XYs, len(xs))
        for i := range xs { pts[i].X = xs[i]; pts[i].Y = ys[i] }
        return pts
    }
    ratioPts := toXY(chances, ratios)
    f1Pts := toXY(chances, f1s)

    if err := plotutil.AddLinePoints(p, "Razão maj/min", ratioPts, "F1", f1Pts); err != nil { return err }
    if err := os.MkdirAll("cmd/api/static", 0o755); err != nil { return err }
    return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
