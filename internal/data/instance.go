package data

import "math"

// Instance é um vetor ordenado de atributos mais o valor da classe.
// Classe ausente é representada por NaN.
type Instance struct {
    Values []float64
    Class  float64
}

func (in Instance) ClassMissing() bool { return math.IsNaN(in.Class) }

type Dataset struct {
    Attributes   []string
    NumClasses   int
    ClassNumeric bool
    Instances    []Instance
}

func NewDataset(attributes []string, numClasses int, classNumeric bool) *Dataset {
    return &Dataset{Attributes: attributes, NumClasses: numClasses, ClassNumeric: classNumeric}
}

func (ds *Dataset) Add(in Instance) { ds.Instances = append(ds.Instances, in) }

func (ds *Dataset) NumInstances() int { return len(ds.Instances) }

// Empty devolve um dataset vazio com o mesmo esquema.
func (ds *Dataset) Empty() *Dataset {
    return &Dataset{Attributes: ds.Attributes, NumClasses: ds.NumClasses, ClassNumeric: ds.ClassNumeric}
}

// RemoveMissingClass devolve uma cópia sem as instâncias de classe ausente.
func (ds *Dataset) RemoveMissingClass() *Dataset {
    out := ds.Empty()
    out.Instances = make([]Instance, 0, len(ds.Instances))
    for _, in := range ds.Instances {
        if in.ClassMissing() { continue }
        out.Instances = append(out.Instances, in)
    }
    return out
}
