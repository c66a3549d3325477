package models

import (
    "bufio"
    "errors"
    "fmt"
    "os"
    "os/exec"
    "path/filepath"

    "unskewedbag/internal/data"
)

// LightGBMCLI delega o treino de um bag ao binário lightgbm. Cada membro do
// ensemble grava o próprio modelo, então MemberID precisa ser único por membro.
type LightGBMCLI struct {
    ExecPath      string
    NumLeaves     int
    MaxDepth      int
    MinDataInLeaf int
    NumIterations int
    LearningRate  float64
    Device        string
    WorkDir       string
    MemberID      int
    ModelPath     string
}

func NewLightGBMCLI() *LightGBMCLI {
    return &LightGBMCLI{
        ExecPath:      "lightgbm",
        NumLeaves:     31,
        MaxDepth:      -1,
        MinDataInLeaf: 20,
        NumIterations: 100,
        LearningRate:  0.1,
        Device:        "cpu",
        WorkDir:       "data",
    }
}

func (l *LightGBMCLI) Name() string {
    if l.Device == "gpu" { return "LightGBM(GPU)" }
    return "LightGBM(CPU)"
}

func (l *LightGBMCLI) Train(ds *data.Dataset) error {
    if ds.NumInstances() == 0 { return nil }
    if err := os.MkdirAll(l.WorkDir, 0o755); err != nil { return err }
    if l.ModelPath == "" {
        l.ModelPath = filepath.Join(l.WorkDir, fmt.Sprintf("lgbm_member_%d.txt", l.MemberID))
    }

    trainCSV := filepath.Join(l.WorkDir, fmt.Sprintf("lgbm_train_%d.csv", l.MemberID))
    if err := writeCSVLabelFirst(trainCSV, ds.Instances); err != nil { return err }

    conf := filepath.Join(l.WorkDir, fmt.Sprintf("lgbm_train_%d.conf", l.MemberID))
    device := l.Device
    if device == "" { device = "cpu" }

    cfg := fmt.Sprintf("task=train\nboosting=gbdt\nobjective=binary\nmetric=auc\n"+
        "data=%s\nheader=false\nlabel_column=0\n"+
        "num_leaves=%d\nmax_depth=%d\nmin_data_in_leaf=%d\n"+
        "num_iterations=%d\nlearning_rate=%f\n"+
        "device=%s\ntree_learner=%s\noutput_model=%s\n",
        trainCSV, l.NumLeaves, l.MaxDepth, l.MinDataInLeaf, l.NumIterations, l.LearningRate,
        device, ternary(device == "gpu", "gpu", "serial"), l.ModelPath,
    )
    if err := os.WriteFile(conf, []byte(cfg), 0o644); err != nil { return err }

    cmd := exec.Command(l.ExecPath, fmt.Sprintf("config=%s", conf))
    cmd.Stdout = os.Stdout
    cmd.Stderr = os.Stderr
    if err := cmd.Run(); err != nil {
        return errors.New("falha ao executar LightGBM CLI (verifique se 'lightgbm' está instalado e no PATH)")
    }
    if _, err := os.Stat(l.ModelPath); err != nil {
        return errors.New("modelo do LightGBM não encontrado após treinamento")
    }
    return nil
}

func (l *LightGBMCLI) Predict(in data.Instance) float64 {
    if l.score(in) >= 0.5 { return 1 }
    return 0
}

func (l *LightGBMCLI) Distribution(in data.Instance) []float64 {
    p := l.score(in)
    return []float64{1 - p, p}
}

func (l *LightGBMCLI) score(in data.Instance) float64 {
    predCSV := filepath.Join(l.WorkDir, fmt.Sprintf("lgbm_pred_%d.csv", l.MemberID))
    probe := data.Instance{Values: in.Values, Class: 0}
    if err := writeCSVLabelFirst(predCSV, []data.Instance{probe}); err != nil { return 0.5 }

    conf := filepath.Join(l.WorkDir, fmt.Sprintf("lgbm_predict_%d.conf", l.MemberID))
    outPath := filepath.Join(l.WorkDir, fmt.Sprintf("lgbm_preds_%d.txt", l.MemberID))
    cfg := fmt.Sprintf("task=predict\ninput_model=%s\ndata=%s\nheader=false\nlabel_column=0\noutput_result=%s\n",
        l.ModelPath, predCSV, outPath,
    )
    if err := os.WriteFile(conf, []byte(cfg), 0o644); err != nil { return 0.5 }

    cmd := exec.Command(l.ExecPath, fmt.Sprintf("config=%s", conf))
    cmd.Stdout = os.Stdout
    cmd.Stderr = os.Stderr
    if err := cmd.Run(); err != nil { return 0.5 }

    f, err := os.Open(outPath)
    if err != nil { return 0.5 }
    defer f.Close()
    sc := bufio.NewScanner(f)
    if sc.Scan() {
        var v float64
        if _, err := fmt.Sscan(sc.Text(), &v); err == nil { return v }
    }
    return 0.5
}

func writeCSVLabelFirst(path string, instances []data.Instance) error {
    f, err := os.Create(path)
    if err != nil { return err }
    defer f.Close()
    w := bufio.NewWriter(f)
    for _, in := range instances {
        fmt.Fprintf(w, "%g", in.Class)
        for _, v := range in.Values {
            fmt.Fprintf(w, ",%g", v)
        }
        fmt.Fprintln(w)
    }
    return w.Flush()
}

func ternary[T any](cond bool, a, b T) T { if cond { return a } ; return b }
