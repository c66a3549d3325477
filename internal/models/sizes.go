package models

import (
    "math"
    "math/rand"
)

// majorityGoalFixed calcula o alvo da classe majoritária no modo UnderBagging:
// um múltiplo fixo do alvo minoritário.
func majorityGoalFixed(bagSizePercent float64, minorityGoal int) int {
    return int(math.Round(bagSizePercent * float64(minorityGoal)))
}

// majorityGoalRoughlyBalanced calcula o alvo majoritário no modo Roughly
// Balanced Bagging: ensaios de Bernoulli independentes com probabilidade
// minorityChance até o contador minoritário atingir minorityGoal; o contador
// majoritário final é o alvo. O stream é derivado de um único sorteio do
// stream mestre, então o alvo é fixado uma vez por treinamento.
// Fora de (0,1) não há simulação: cai para o balanceamento perfeito
// (com chance 1 a simulação nunca sortearia a majoritária).
func majorityGoalRoughlyBalanced(minorityGoal int, minorityChance float64, seed int64) int {
    if minorityChance <= 0 || minorityChance >= 1 {
        return minorityGoal
    }
    rng := rand.New(rand.NewSource(seed))
    minorityCount := 0
    majorityCount := 0
    for minorityCount < minorityGoal {
        if rng.Float64() < minorityChance {
            minorityCount++
        } else {
            majorityCount++
        }
    }
    return majorityCount
}

// clampGoal limita o alvo ao tamanho do pool quando não há reposição: sem
// reposição não existem mais instâncias distintas do que o pool contém.
func clampGoal(goal, poolSize int, noReplacement bool) int {
    if noReplacement && goal > poolSize {
        return poolSize
    }
    return goal
}
