package main

import (
	"encoding/csv"
	"encoding/gob"
	"flag"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"go.uber.org/zap"

	"unskewedbag/internal/data"
	"unskewedbag/internal/features"
	"unskewedbag/internal/models"
	"unskewedbag/pkg/utils"
)

func main() {
    logger := utils.Logger()
    defer logger.Sync()

    regen := flag.Bool("regen", true, "Regenerar dataset sintético")
    n := flag.Int("n", 120000, "Número de registros sintéticos")
    fraudRate := flag.Float64("fraud_rate", 0.03, "Taxa base de fraude do dataset sintético")
    dataSeed := flag.Int64("data_seed", 7, "Seed do dataset sintético")
    out := flag.String("out", "data/synthetic.csv", "Caminho do CSV de saída")

    algo := flag.String("algo", "dt", "Preditor base: dt|rf|lgbm")
    maxDepth := flag.Int("max_depth", 6, "Profundidade máxima da árvore base")
    minSamples := flag.Int("min_samples", 20, "Mínimo de amostras para split na árvore base")

    iterations := flag.Int("iterations", 10, "Número de membros do ensemble")
    bagPercent := flag.Float64("bag_percent", 1.0, "Multiplicador majoritário no modo de razão fixa (1.0 = 100%)")
    rbb := flag.Bool("rbb", false, "Usar Roughly Balanced Bagging")
    minorityChance := flag.Float64("minority_chance", 0.5, "Chance de sortear a classe minoritária no RBB")
    noReplMin := flag.Bool("no_repl_min", false, "Sem reposição na classe minoritária")
    noReplMaj := flag.Bool("no_repl_maj", false, "Sem reposição na classe majoritária")
    oob := flag.Bool("oob", false, "Calcular erro out-of-bag (reservado, não computado pelo núcleo)")
    seed := flag.Int64("seed", 1, "Seed do stream mestre")

    curve := flag.Bool("curve", true, "Gerar curva de métricas por tamanho do ensemble (PNG e CSV)")
    curvePoints := flag.Int("curve_points", 8, "Quantidade de pontos na curva")
    curveImg := flag.String("curve_out_img", "cmd/api/static/ensemble_curve.png", "PNG da curva")
    curveCsv := flag.String("curve_out_csv", "data/ensemble_curve.csv", "CSV da curva")

    threshold := flag.Float64("threshold", 0.5, "Threshold para classificação (métricas F1/precisão/recall)")
    thresholdAuto := flag.Bool("threshold_auto", true, "Escolher automaticamente o threshold que maximiza F1 no holdout")
    thresholdMetric := flag.String("threshold_metric", "f1", "Métrica para escolher threshold: f1|acc")
    thrMin := flag.Float64("threshold_min", 0.05, "Limite inferior para threshold automático")
    thrMax := flag.Float64("threshold_max", 0.95, "Limite superior para threshold automático")
    flag.Parse()

    if *regen {
        logger.Info("Gerando dataset sintético", zap.Int("n", *n), zap.Float64("fraud_rate", *fraudRate), zap.String("out", *out))
        if err := data.GenerateSyntheticExpenses(*n, *fraudRate, *dataSeed, *out); err != nil {
            logger.Fatal("Falha ao gerar dataset", zap.Error(err))
        }
    }

    ds, err := loadDataset(*out)
    if err != nil { logger.Fatal("Falha ao carregar dataset", zap.Error(err)) }

    dsTrain, dsTest := stratifiedSplit(ds, 0.8, *seed)

    var pos, neg int
    for _, in := range ds.Instances { if in.Class > 0 { pos++ } else { neg++ } }
    logger.Info("Distribuição da classe", zap.Int("positivos", pos), zap.Int("negativos", neg))

    u := models.NewUnskewedBagging(baseFactory(*algo, *maxDepth, *minSamples))
    u.Iterations = *iterations
    u.BagSizePercent = *bagPercent
    u.UseRoughlyBalanced = *rbb
    u.MinorityChance = *minorityChance
    u.NoReplacementMinority = *noReplMin
    u.NoReplacementMajority = *noReplMaj
    u.CalcOutOfBag = *oob
    u.Seed = *seed

    start := time.Now()
    if err := u.Fit(dsTrain); err != nil {
        logger.Fatal("Falha ao treinar ensemble", zap.Error(err))
    }
    logger.Info("Ensemble treinado",
        zap.Int("membros", len(u.Members)),
        zap.Int("alvo_minoritario", u.MinorityGoal),
        zap.Int("alvo_majoritario", u.MajorityGoal),
        zap.Duration("duracao", time.Since(start)),
    )
    for _, name := range u.EnumerateMeasures() {
        if v, err := u.GetMeasure(name); err == nil {
            logger.Info("Medida acumulada", zap.String("medida", name), zap.Float64("soma", v))
        }
    }

    yTest, probaTest := scoreAll(u, dsTest)
    valN := int(0.1 * float64(dsTrain.NumInstances()))
    if valN < 100 { valN = 100 }
    if valN > dsTrain.NumInstances() { valN = dsTrain.NumInstances() }
    dsVal := dsTrain.Empty()
    dsVal.Instances = dsTrain.Instances[dsTrain.NumInstances()-valN:]
    yVal, probaVal := scoreAll(u, dsVal)

    thrUsed := *threshold
    if *thresholdAuto {
        if *thresholdMetric == "acc" { thrUsed, _ = bestThresholdAcc(yVal, probaVal) } else { thrUsed, _ = bestThresholdF1(yVal, probaVal) }
    }
    if thrUsed < *thrMin { thrUsed = *thrMin }
    if thrUsed > *thrMax { thrUsed = *thrMax }
    preds := probaToPred(probaTest, thrUsed)
    acc := accuracy(yTest, preds)
    prec, rec, f1 := prf1(yTest, probaTest, thrUsed)
    roc := rocAUC(yTest, probaTest)
    pr := prAUC(yTest, probaTest)
    logger.Info("Métricas holdout",
        zap.String("model", u.Name()),
        zap.Float64("accuracy", acc),
        zap.Float64("f1", f1),
        zap.Float64("precision", prec),
        zap.Float64("recall", rec),
        zap.Float64("roc_auc", roc),
        zap.Float64("pr_auc", pr),
        zap.Float64("threshold", thrUsed),
    )

    if err := os.MkdirAll("models", 0o755); err != nil { logger.Fatal("mkdir models", zap.Error(err)) }
    registerBaseModels()
    path := "models/unskewed_model.gob"
    mf, err := os.Create(path)
    if err != nil { logger.Fatal("criar modelo", zap.Error(err)) }
    defer mf.Close()
    enc := gob.NewEncoder(mf)
    if err := enc.Encode(u); err != nil { logger.Fatal("serializar modelo", zap.Error(err)) }
    logger.Info("Modelo salvo", zap.String("path", path))
    fmt.Println("Modelo:", u.Name())

    if *curve {
        sizes := curveSizes(*iterations, *curvePoints)
        testF1 := make([]float64, len(sizes))
        testROC := make([]float64, len(sizes))
        testPR := make([]float64, len(sizes))
        for k, s := range sizes {
            cu := models.NewUnskewedBagging(baseFactory(*algo, *maxDepth, *minSamples))
            cu.Iterations = s
            cu.BagSizePercent = *bagPercent
            cu.UseRoughlyBalanced = *rbb
            cu.MinorityChance = *minorityChance
            cu.NoReplacementMinority = *noReplMin
            cu.NoReplacementMajority = *noReplMaj
            cu.Seed = *seed
            if err := cu.Fit(dsTrain); err != nil { logger.Fatal("Falha ao treinar no ponto da curva", zap.Error(err)) }
            y, ps := scoreAll(cu, dsTest)
            _, _, f1 := prf1(y, ps, thrUsed)
            testF1[k] = f1
            testROC[k] = rocAUC(y, ps)
            testPR[k] = prAUC(y, ps)
        }
        if err := writeCurveCSV(*curveCsv, sizes, testF1, testROC, testPR); err != nil {
            logger.Warn("Falha ao salvar CSV da curva", zap.Error(err))
        }
        if err := plotCurvePNG(*curveImg, sizes, testF1, testROC); err != nil {
            logger.Warn("Falha ao salvar PNG da curva", zap.Error(err))
        } else {
            logger.Info("Curva do ensemble gerada", zap.String("png", *curveImg), zap.String("csv", *curveCsv))
        }
    }
}

func loadDataset(path string) (*data.Dataset, error) {
    f, err := os.Open(path)
    if err != nil { return nil, err }
    defer f.Close()

    r := csv.NewReader(f)
    rows, err := r.ReadAll()
    if err != nil { return nil, err }
    if len(rows) < 2 { return nil, fmt.Errorf("CSV vazio: %s", path) }

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

// stratifiedSplit embaralha e divide preservando a proporção das classes.
func stratifiedSplit(ds *data.Dataset, trainFrac float64, seed int64) (*data.Dataset, *data.Dataset) {
    rng := rand.New(rand.NewSource(seed))
    var posIdx, negIdx []int
    for i, in := range ds.Instances {
        if in.Class > 0 { posIdx = append(posIdx, i) } else { negIdx = append(negIdx, i) }
    }
    rng.Shuffle(len(posIdx), func(i, j int) { posIdx[i], posIdx[j] = posIdx[j], posIdx[i] })
    rng.Shuffle(len(negIdx), func(i, j int) { negIdx[i], negIdx[j] = negIdx[j], negIdx[i] })

    pTrain := int(trainFrac * float64(len(posIdx)))
    nTrain := int(trainFrac * float64(len(negIdx)))
    trainIdx := append(append([]int{}, posIdx[:pTrain]...), negIdx[:nTrain]...)
    testIdx := append(append([]int{}, posIdx[pTrain:]...), negIdx[nTrain:]...)
    rng.Shuffle(len(trainIdx), func(i, j int) { trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i] })
    rng.Shuffle(len(testIdx), func(i, j int) { testIdx[i], testIdx[j] = testIdx[j], testIdx[i] })

    dsTrain := ds.Empty()
    for _, i := range trainIdx { dsTrain.Add(ds.Instances[i]) }
    dsTest := ds.Empty()
    for _, i := range testIdx { dsTest.Add(ds.Instances[i]) }
    return dsTrain, dsTest
}

func baseFactory(algo string, maxDepth, minSamples int) func() models.Model {
    switch algo {
    case "rf":
        return func() models.Model {
            rf := models.NewRandomForest()
            rf.MaxDepth = maxDepth
            rf.MinSamples = minSamples
            return rf
        }
    case "lgbm":
        memberID := 0
        return func() models.Model {
            lgbm := models.NewLightGBMCLI()
            if maxDepth > 0 { lgbm.MaxDepth = maxDepth; lgbm.NumLeaves = int(math.Pow(2, float64(maxDepth))) }
            lgbm.MinDataInLeaf = minSamples
            lgbm.MemberID = memberID
            memberID++
            return lgbm
        }
    default:
        return func() models.Model {
            dt := models.NewDecisionTree()
            dt.MaxDepth = maxDepth
            dt.MinSamplesSplit = minSamples
            return dt
        }
    }
}

func registerBaseModels() {
    gob.Register(&models.DecisionTree{})
    gob.Register(&models.RandomForest{})
    gob.Register(&models.RegressionStump{})
    gob.Register(&models.LightGBMCLI{})
}

func scoreAll(u *models.UnskewedBagging, ds *data.Dataset) ([]int, []float64) {
    y := make([]int, ds.NumInstances())
    ps := make([]float64, ds.NumInstances())
    for i, in := range ds.Instances {
        y[i] = int(in.Class)
        s, err := u.Score(in)
        if err == nil { ps[i] = s }
    }
    return y, ps
}

func curveSizes(iterations, points int) []int {
    if points < 2 { points = 2 }
    if points > iterations { points = iterations }
    sizes := make([]int, 0, points)
    last := 0
    for i := 1; i <= points; i++ {
        s := int(math.Round(float64(i) / float64(points) * float64(iterations)))
        if s <= last { s = last + 1 }
        if s > iterations { s = iterations }
        if s != last { sizes = append(sizes, s); last = s }
    }
    return sizes
}

func accuracy(y, p []int) float64 {
    if len(y) == 0 { return 0 }
    c := 0
    for i := range y { if y[i] == p[i] { c++ } }
    return float64(c)/float64(len(y))
}

func writeCurveCSV(path string, sizes []int, testF1, testROC, testPR []float64) error {
    if err := os.MkdirAll("data", 0o755); err != nil { return err }
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    w := csv.NewWriter(f)
    defer w.Flush()
    if err := w.Write([]string{"iterations", "test_f1", "test_roc_auc", "test_pr_auc"}); err != nil { return err }
    for i := range sizes {
        rec := []string{strconv.Itoa(sizes[i]), fmt.Sprintf("%.6f", testF1[i]),
            fmt.Sprintf("%.6f", testROC[i]), fmt.Sprintf("%.6f", testPR[i]),
        }
        if err := w.Write(rec); err != nil { return err }
    }
    return nil
}

func plotCurvePNG(path string, sizes []int, testF1, testROC []float64) error {
    p := plot.New()
    p.Title.Text = "Métricas por Tamanho do Ensemble"
    p.X.Label.Text = "Membros do ensemble"
    p.Y.Label.Text = "Métrica"
    p.Y.Min = 0
    p.Y.Max = 1

    toXY := func(xs []int, ys []float64) plotter.XYs {
        pts := make(plotter.XYs, len(xs))
        for i := range xs { pts[i].X = float64(xs[i]); pts[i].Y = ys[i] }
        return pts
    }
    f1Pts := toXY(sizes, testF1)
    rocPts := toXY(sizes, testROC)
    if err := plotutil.AddLinePoints(p, "Teste (F1)", f1Pts, "Teste (ROC-AUC)", rocPts); err != nil { return err }
    if err := os.MkdirAll("cmd/api/static", 0o755); err != nil { return err }
    return p.Save(8*vg.Inch, 4*vg.Inch, path)
}

func probaToPred(ps []float64, thr float64) []int {
    out := make([]int, len(ps))
    for i := range ps { if ps[i] >= thr { out[i] = 1 } }
    return out
}

func confusion(y []int, ps []float64, thr float64) (tp, fp, tn, fn int) {
    for i := range y {
        pred := 0
        if ps[i] >= thr { pred = 1 }
        if pred == 1 && y[i] == 1 { tp++ } else if pred == 1 && y[i] == 0 { fp++ } else if pred == 0 && y[i] == 0 { tn++ } else if pred == 0 && y[i] == 1 { fn++ }
    }
    return
}

func prf1(y []int, ps []float64, thr float64) (precision, recall, f1 float64) {
    tp, fp, _, fn := confusion(y, ps, thr)
    if tp+fp > 0 { precision = float64(tp) / float64(tp+fp) }
    if tp+fn > 0 { recall = float64(tp) / float64(tp+fn) }
    if precision+recall > 0 { f1 = 2 * precision * recall / (precision + recall) }
    return
}

func rocAUC(y []int, ps []float64) float64 {
    type pair struct{ s float64; y int }
    n := len(y)
    pairs := make([]pair, n)
    for i := 0; i < n; i++ { pairs[i] = pair{ps[i], y[i]} }
    sort.Slice(pairs, func(i, j int) bool { return pairs[i].s > pairs[j].s })
    var pos, neg int
    for _, p := range pairs { if p.y == 1 { pos++ } else { neg++ } }
    if pos == 0 || neg == 0 { return 0 }
    tp, fp := 0, 0
    prevS := math.Inf(1)
    var auc float64
    prevTPR, prevFPR := 0.0, 0.0
    for i := 0; i < n; i++ {
        if pairs[i].s != prevS {
            tpr := float64(tp) / float64(pos)
            fpr := float64(fp) / float64(neg)
            auc += (fpr - prevFPR) * (tpr + prevTPR) / 2.0
            prevTPR, prevFPR = tpr, fpr
            prevS = pairs[i].s
        }
        if pairs[i].y == 1 { tp++ } else { fp++ }
    }
    tpr := float64(tp) / float64(pos)
    fpr := float64(fp) / float64(neg)
    auc += (fpr - prevFPR) * (tpr + prevTPR) / 2.0
    return auc
}

func prAUC(y []int, ps []float64) float64 {
    type pair struct{ s float64; y int }
    n := len(y)
    pairs := make([]pair, n)
    for i := 0; i < n; i++ { pairs[i] = pair{ps[i], y[i]} }
    sort.Slice(pairs, func(i, j int) bool { return pairs[i].s > pairs[j].s })
    var tp, fp, fn int
    for _, p := range pairs { if p.y == 1 { fn++ } }
    var prevRec, auc float64
    for i := 0; i < n; i++ {
        if pairs[i].y == 1 { tp++; fn-- } else { fp++ }
        var prec, rec float64
        if tp+fp > 0 { prec = float64(tp) / float64(tp+fp) }
        if tp+fn > 0 { rec = float64(tp) / float64(tp+fn) }
        auc += (rec - prevRec) * prec
        prevRec = rec
    }
    return auc
}

func bestThresholdF1(y []int, ps []float64) (thr float64, best float64) {
    if len(ps) == 0 { return 0.5, 0 }
    steps := 200
    best = -1
    thr = 0.5
    for i := 0; i <= steps; i++ {
        t := float64(i) / float64(steps)
        _, _, f1 := prf1(y, ps, t)
        if f1 > best { best = f1; thr = t }
    }
    return
}

func bestThresholdAcc(y []int, ps []float64) (thr float64, best float64) {
    if len(ps) == 0 { return 0.5, 0 }
    steps := 200
    best = -1
    thr = 0.5
    for i := 0; i <= steps; i++ {
        t := float64(i) / float64(steps)
        p := probaToPred(ps, t)
        a := accuracy(y, p)
        if a > best { best = a; thr = t }
    }
    return
}
