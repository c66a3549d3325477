package models

import (
    "errors"
    "math/rand"

    "unskewedbag/internal/data"
)

// ErrInsufficientPool indica sorteio contra um pool esgotado no modo sem reposição.
var ErrInsufficientPool = errors.New("pool de instâncias insuficiente para amostragem sem reposição")

// bagSampler sorteia um bag por iteração a partir dos dois pools. Os pools são
// compartilhados entre todas as iterações: com "sem reposição" ativo o
// esgotamento é cumulativo ao longo do ensemble inteiro, não por bag.
type bagSampler struct {
    minority []data.Instance
    majority []data.Instance

    noReplacementMinority bool
    noReplacementMajority bool
}

// sampleBag monta um bag com minorityGoal sorteios do pool minoritário seguidos
// de majorityGoal sorteios do majoritário. Cada sorteio consome um índice do
// stream mestre.
func (s *bagSampler) sampleBag(schema *data.Dataset, minorityGoal, majorityGoal int, rng *rand.Rand) (*data.Dataset, error) {
    bag := schema.Empty()
    for i := 0; i < minorityGoal; i++ {
        if len(s.minority) == 0 {
            return nil, ErrInsufficientPool
        }
        k := rng.Intn(len(s.minority))
        bag.Add(s.minority[k])
        if s.noReplacementMinority {
            s.minority = append(s.minority[:k], s.minority[k+1:]...)
        }
    }
    for i := 0; i < majorityGoal; i++ {
        if len(s.majority) == 0 {
            return nil, ErrInsufficientPool
        }
        k := rng.Intn(len(s.majority))
        bag.Add(s.majority[k])
        if s.noReplacementMajority {
            s.majority = append(s.majority[:k], s.majority[k+1:]...)
        }
    }
    return bag, nil
}
