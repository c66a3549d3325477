package main

import (
    "encoding/csv"
    "encoding/gob"
    "math"
    "net/http"
    "os"
    "path/filepath"
    "strconv"
    "strings"
    "time"

    "github.com/gin-gonic/gin"

    "unskewedbag/internal/data"
    "unskewedbag/internal/features"
    "unskewedbag/internal/models"
    "unskewedbag/pkg/utils"
)

// scorer pontua um vetor de atributos com a probabilidade de fraude.
type scorer interface {
    Score(v []float64) float64
    Name() string
}

type ensembleScorer struct{ u *models.UnskewedBagging }

func (e *ensembleScorer) Score(v []float64) float64 {
    s, err := e.u.Score(data.Instance{Values: v, Class: math.NaN()})
    if err != nil { return 0.5 }
    return s
}
func (e *ensembleScorer) Name() string { return e.u.Name() }

type ruleModel struct{}

func (r *ruleModel) Name() string { return "RuleModel" }
func (r *ruleModel) Score(v []float64) float64 {
    s := 0.05
    if v[4] == 1 { s += 0.35 }
    if v[5] == 1 { s += 0.1 }
    if v[6] == 1 { s += 0.15 }
    if v[7] == 1 { s += 0.15 }
    if v[len(v)-3] == 1 && v[0] > 200 { s += 0.2 }
    if v[1] < 0 { s += 0.3 }
    if s > 0.95 { s = 0.95 }
    return s
}

var model scorer

type catRule struct { Min float64; Max float64; HardMax float64 }
var categoryRules = map[string]catRule{
    "alimentação": {Min: 5, Max: 300, HardMax: 1500},
    "transporte":  {Min: 10, Max: 800, HardMax: 5000},
    "taxi":        {Min: 10, Max: 300, HardMax: 2000},
    "pedágio":     {Min: 2, Max: 200, HardMax: 5000},
    "hospedagem":  {Min: 80, Max: 600, HardMax: 5000},
}

func detectAnomalies(category string, amount float64, reqDate, travelDate time.Time) []string {
    flags := []string{}
    r, ok := categoryRules[strings.ToLower(category)]
    if amount <= 0 {
        flags = append(flags, "valor não positivo")
    }
    if ok {
        if amount > r.HardMax {
            flags = append(flags, "valor acima do máximo permitido para a categoria")
        } else if amount > r.Max {
            flags = append(flags, "valor acima da faixa típica da categoria")
        } else if amount < r.Min {
            flags = append(flags, "valor abaixo da faixa típica da categoria")
        }
    }
    if travelDate.Before(reqDate) {
        flags = append(flags, "data de viagem anterior à solicitação")
    }
    return flags
}

func riskWithAnomalies(p float64, category string, amount float64, reqDate, travelDate time.Time) string {
    base := riskBandWithCategory(p, category, amount)
    critical := false
    r, ok := categoryRules[strings.ToLower(category)]
    if amount <= 0 || travelDate.Before(reqDate) {
        critical = true
    }
    if ok && amount > r.HardMax {
        critical = true
    }
    if critical { return "alto" }
    if ok && amount > r.Max && base == "muito_baixo" {
        return "medio"
    }
    return base
}

func loadEnsemble(path string) *models.UnskewedBagging {
    gob.Register(&models.DecisionTree{})
    gob.Register(&models.RandomForest{})
    gob.Register(&models.RegressionStump{})
    gob.Register(&models.LightGBMCLI{})
    f, err := os.Open(path)
    if err != nil { return nil }
    defer f.Close()
    dec := gob.NewDecoder(f)
    var u models.UnskewedBagging
    if err := dec.Decode(&u); err != nil || len(u.Members) == 0 { return nil }
    return &u
}

func main() {
    logger := utils.Logger()
    defer logger.Sync()

    path := os.Getenv("MODEL_PATH")
    if path == "" { path = filepath.Join("models", "unskewed_model.gob") }
    if u := loadEnsemble(path); u != nil {
        model = &ensembleScorer{u: u}
    } else {
        model = &ruleModel{}
    }

    r := gin.Default()

    r.Static("/static", "cmd/api/static")
    r.GET("/dashboard", func(c *gin.Context) {
        c.File("cmd/api/static/index.html")
    })
    r.GET("/dashboard/data", dashboardData)
    r.GET("/dashboard/metrics", dashboardMetrics)

    api := r.Group("/")
    api.Use(apiKeyMiddleware)
    api.POST("/predict", handlePredict)
    api.POST("/batch", handleBatch)

    port := os.Getenv("PORT")
    if port == "" { port = "8080" }
    r.Run(":" + port)
}

func apiKeyMiddleware(c *gin.Context) {
    key := os.Getenv("API_KEY")
    if key == "" { c.Next(); return }
    got := c.GetHeader("X-API-Key")
    if got != key { c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"}); return }
    c.Next()
}

type predictReq struct {
    ExpenseID      string `json:"expense_id"`
    RequestID      string `json:"request_id"`
    RequesterID    string `json:"requester_id"`
    TravellerID    string `json:"traveller_id"`
    ApproverID     string `json:"approver_id"`
    RequestDate    string `json:"request_date"`
    TravelDate     string `json:"travel_date"`
    Category       string `json:"category"`
    Description    string `json:"description"`
    Amount         float64 `json:"amount"`
    Currency       string `json:"currency"`
    JobTitle       string `json:"job_title"`
    Department     string `json:"department"`
    ApprovalStatus string `json:"approval_status"`
}

func vectorOf(req predictReq) ([]float64, time.Time, time.Time) {
    rd, _ := time.Parse("2006-01-02", req.RequestDate)
    td, _ := time.Parse("2006-01-02", req.TravelDate)
    e := features.BuildExpense(req.ExpenseID, req.RequestID, req.RequesterID, req.TravellerID, req.ApproverID,
        rd, td, req.Category, req.Description, req.Amount, req.Currency, req.JobTitle, req.Department, req.ApprovalStatus)
    return features.Vectorize(e), rd, td
}

func handlePredict(c *gin.Context) {
    var req predictReq
    if err := c.BindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"}); return
    }
    v, rd, td := vectorOf(req)
    p := model.Score(v)
    flags := detectAnomalies(req.Category, req.Amount, rd, td)
    risk := riskWithAnomalies(p, req.Category, req.Amount, rd, td)
    c.JSON(http.StatusOK, gin.H{"score": p, "risk": risk, "model": model.Name(), "flags": flags})
}

func handleBatch(c *gin.Context) {
    var items []predictReq
    if err := c.BindJSON(&items); err != nil { c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"}); return }
    out := make([]gin.H, len(items))
    for i := range items {
        v, rd, td := vectorOf(items[i])
        p := model.Score(v)
        flags := detectAnomalies(items[i].Category, items[i].Amount, rd, td)
        out[i] = gin.H{
            "score": p,
            "risk": riskWithAnomalies(p, items[i].Category, items[i].Amount, rd, td),
            "flags": flags,
        }
    }
    c.JSON(http.StatusOK, out)
}

func riskBand(p float64) string {
    switch {
    case p >= 0.95:
        return "alto"
    case p >= 0.7:
        return "medio"
    case p >= 0.5:
        return "baixo"
    default:
        return "muito_baixo"
    }
}

func riskBandWithCategory(p float64, category string, amount float64) string {
    base := riskBand(p)
    r, ok := categoryRules[strings.ToLower(category)]
    if !ok { return base }
    if amount > r.Max {
        if p < 0.7 { return "medio" }
        return "alto"
    }
    if amount < r.Min && p < 0.7 {
        return "baixo"
    }
    return base
}

func dashboardData(c *gin.Context) {
    path := "data/synthetic.csv"
    f, err := os.Open(path)
    if err != nil { c.JSON(http.StatusOK, gin.H{"items": []gin.H{}}); return }
    defer f.Close()
    r := csv.NewReader(f)
    rows, err := r.ReadAll()
    if err != nil || len(rows) < 2 { c.JSON(http.StatusOK, gin.H{"items": []gin.H{}}); return }
    max := 200
    items := make([]gin.H, 0, max)
    for i := 1; i < len(rows) && len(items) < max; i++ {
        row := rows[i]
        rd, _ := time.Parse("2006-01-02", row[5])
        td, _ := time.Parse("2006-01-02", row[6])
        amt, _ := strconv.ParseFloat(row[9], 64)
        e := features.BuildExpense(row[0], row[1], row[2], row[3], row[4], rd, td, row[7], row[8], amt, row[10], row[11], row[12], row[13])
        p := model.Score(features.Vectorize(e))
        items = append(items, gin.H{
            "expense_id": row[0],
            "category": row[7],
            "amount": amt,
            "department": row[12],
            "date": row[5],
            "score": p,
            "risk": riskBand(p),
            "model": model.Name(),
        })
    }
    q := strings.ToLower(c.Query("category"))
    if q != "" {
        filt := make([]gin.H, 0, len(items))
        for _, it := range items { if strings.ToLower(it["category"].(string)) == q { filt = append(filt, it) } }
        items = filt
    }
    c.JSON(http.StatusOK, gin.H{"items": items})
}

func dashboardMetrics(c *gin.Context) {
    path := "data/ensemble_curve.csv"
    f, err := os.Open(path)
    if err != nil { c.JSON(http.StatusOK, gin.H{"metrics": gin.H{}}); return }
    defer f.Close()
    r := csv.NewReader(f)
    rows, err := r.ReadAll()
    if err != nil || len(rows) < 2 { c.JSON(http.StatusOK, gin.H{"metrics": gin.H{}}); return }
    hdr := rows[0]
    last := rows[len(rows)-1]
    vals := map[string]string{}
    for i := range hdr {
        if i < len(last) { vals[hdr[i]] = last[i] }
    }
    out := gin.H{}
    for _, k := range []string{"iterations", "test_f1", "test_roc_auc", "test_pr_auc"} {
        if v, ok := vals[k]; ok { out[k] = v }
    }
    c.JSON(http.StatusOK, gin.H{"metrics": out})
}
