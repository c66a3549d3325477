package models

import "unskewedbag/internal/data"

// Model é o contrato mínimo de um preditor base.
// Predict devolve o escalar previsto (índice de classe ou valor numérico);
// Distribution devolve o vetor de probabilidades por classe.
type Model interface {
    Train(ds *data.Dataset) error
    Predict(in data.Instance) float64
    Distribution(in data.Instance) []float64
    Name() string
}

// Seedable é a capacidade opcional de receber um seed independente.
type Seedable interface {
    SetSeed(seed int64)
}

// MeasureProducer é a capacidade opcional de expor medidas diagnósticas nomeadas.
type MeasureProducer interface {
    EnumerateMeasures() []string
    GetMeasure(name string) (float64, error)
}
