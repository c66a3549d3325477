package models

import (
    "errors"
    "fmt"
    "math"
    "math/rand"
    "sort"
    "strings"

    "gonum.org/v1/gonum/floats"

    "unskewedbag/internal/data"
)

var (
    ErrNoBaseModel         = errors.New("modelo base não configurado")
    ErrNotTrained          = errors.New("ensemble não treinado")
    ErrUnknownMeasure      = errors.New("medida adicional desconhecida")
    ErrMeasuresUnsupported = errors.New("modelo base não expõe medidas adicionais")
)

// UnskewedBagging treina um ensemble de preditores base sobre bags
// rebalanceados de um dataset desbalanceado. O modo padrão é o UnderBagging
// (razão fixa via BagSizePercent); UseRoughlyBalanced troca para o Roughly
// Balanced Bagging, com razão sorteada uma vez por treinamento.
type UnskewedBagging struct {
    Iterations            int
    BagSizePercent        float64
    UseRoughlyBalanced    bool
    MinorityChance        float64
    NoReplacementMinority bool
    NoReplacementMajority bool
    // CalcOutOfBag é aceito por compatibilidade; o erro out-of-bag não é
    // calculado por este núcleo.
    CalcOutOfBag bool
    Seed         int64

    // Preenchidos pelo Fit.
    MinorityGoal int
    MajorityGoal int
    NumClasses   int
    ClassNumeric bool
    Members      []Model
    Measures     map[string]float64

    newMember func() Model
}

// NewUnskewedBagging cria o ensemble com os padrões do algoritmo:
// 10 iterações, razão 1.0 (100%) e chance minoritária 0.5.
func NewUnskewedBagging(newMember func() Model) *UnskewedBagging {
    return &UnskewedBagging{
        Iterations:     10,
        BagSizePercent: 1.0,
        MinorityChance: 0.5,
        newMember:      newMember,
        Measures:       map[string]float64{},
    }
}

func (u *UnskewedBagging) Name() string { return "UnskewedBagging" }

// SetBaseModel troca a fábrica do preditor base (necessário após decodificar
// um modelo persistido, já que funções não são serializadas).
func (u *UnskewedBagging) SetBaseModel(newMember func() Model) { u.newMember = newMember }

// Fit constrói o ensemble: remove instâncias sem classe, particiona em
// minoritária/majoritária, fixa os alvos de amostragem uma única vez e então,
// sequencialmente, sorteia um bag, semeia e treina cada membro. Um único
// stream mestre dirige todos os sorteios, então o mesmo seed reproduz
// exatamente os mesmos bags, seeds de membros e predições.
func (u *UnskewedBagging) Fit(ds *data.Dataset) error {
    if u.newMember == nil {
        return ErrNoBaseModel
    }
    if u.Iterations <= 0 {
        u.Iterations = 10
    }

    rng := rand.New(rand.NewSource(u.Seed))

    filtered := ds.RemoveMissingClass()
    minorityPool, majorityPool := partitionByClass(filtered)

    minorityGoal := len(minorityPool)
    var majorityGoal int
    if u.UseRoughlyBalanced {
        majorityGoal = majorityGoalRoughlyBalanced(minorityGoal, u.MinorityChance, rng.Int63())
    } else {
        majorityGoal = majorityGoalFixed(u.BagSizePercent, minorityGoal)
    }
    minorityGoal = clampGoal(minorityGoal, len(minorityPool), u.NoReplacementMinority)
    majorityGoal = clampGoal(majorityGoal, len(majorityPool), u.NoReplacementMajority)
    u.MinorityGoal = minorityGoal
    u.MajorityGoal = majorityGoal

    sampler := &bagSampler{
        minority:              minorityPool,
        majority:              majorityPool,
        noReplacementMinority: u.NoReplacementMinority,
        noReplacementMajority: u.NoReplacementMajority,
    }

    u.NumClasses = filtered.NumClasses
    u.ClassNumeric = filtered.ClassNumeric
    u.Members = make([]Model, u.Iterations)
    u.Measures = map[string]float64{}

    for j := 0; j < u.Iterations; j++ {
        bag, err := sampler.sampleBag(filtered, minorityGoal, majorityGoal, rng)
        if err != nil {
            u.Members = nil
            return err
        }
        m := u.newMember()
        if s, ok := m.(Seedable); ok {
            s.SetSeed(rng.Int63())
        }
        if err := m.Train(bag); err != nil {
            u.Members = nil
            return fmt.Errorf("falha ao treinar membro %d: %w", j, err)
        }
        u.Members[j] = m
        if mp, ok := m.(MeasureProducer); ok {
            if err := u.accumulateMeasures(mp); err != nil {
                u.Members = nil
                return err
            }
        }
    }
    return nil
}

// accumulateMeasures soma (não tira média) as medidas com prefixo "measure"
// de um membro no acumulador, sob o nome em minúsculas.
func (u *UnskewedBagging) accumulateMeasures(mp MeasureProducer) error {
    for _, name := range mp.EnumerateMeasures() {
        if !strings.HasPrefix(name, "measure") {
            continue
        }
        v, err := mp.GetMeasure(name)
        if err != nil {
            return err
        }
        u.Measures[strings.ToLower(name)] += v
    }
    return nil
}

// DistributionForInstance agrega as saídas dos membros em uma única predição.
// Classe numérica: média dos escalares, devolvida em um vetor de tamanho 1.
// Classe nominal: soma dos vetores de probabilidade, normalizada para somar 1;
// uma soma numericamente nula é devolvida inalterada.
func (u *UnskewedBagging) DistributionForInstance(in data.Instance) ([]float64, error) {
    if len(u.Members) == 0 {
        return nil, ErrNotTrained
    }
    if u.ClassNumeric {
        sum := 0.0
        for _, m := range u.Members {
            sum += m.Predict(in)
        }
        return []float64{sum / float64(len(u.Members))}, nil
    }
    sums := make([]float64, u.NumClasses)
    for _, m := range u.Members {
        floats.Add(sums, m.Distribution(in))
    }
    if total := floats.Sum(sums); math.Abs(total) > 1e-6 {
        floats.Scale(1/total, sums)
    }
    return sums, nil
}

// Score é a probabilidade agregada da classe positiva (índice 1).
func (u *UnskewedBagging) Score(in data.Instance) (float64, error) {
    dist, err := u.DistributionForInstance(in)
    if err != nil {
        return 0, err
    }
    if len(dist) < 2 {
        return dist[0], nil
    }
    return dist[1], nil
}

func (u *UnskewedBagging) measureCapable() bool {
    if len(u.Members) > 0 {
        _, ok := u.Members[0].(MeasureProducer)
        return ok
    }
    if u.newMember != nil {
        _, ok := u.newMember().(MeasureProducer)
        return ok
    }
    return false
}

// EnumerateMeasures lista, em ordem estável, as medidas acumuladas.
func (u *UnskewedBagging) EnumerateMeasures() []string {
    if !u.measureCapable() {
        return nil
    }
    names := make([]string, 0, len(u.Measures))
    for name := range u.Measures {
        names = append(names, name)
    }
    sort.Strings(names)
    return names
}

// GetMeasure devolve o valor acumulado de uma medida. O nome é comparado em
// minúsculas, como armazenado.
func (u *UnskewedBagging) GetMeasure(name string) (float64, error) {
    if !u.measureCapable() {
        return 0, ErrMeasuresUnsupported
    }
    v, ok := u.Measures[strings.ToLower(name)]
    if !ok {
        return 0, fmt.Errorf("%w: %s", ErrUnknownMeasure, name)
    }
    return v, nil
}
