package models

import (
    "math"
    "testing"

    "gonum.org/v1/gonum/stat"
)

func TestMajorityGoalFixed(t *testing.T) {
    cases := []struct {
        percent float64
        goal    int
        want    int
    }{
        {1.0, 10, 10},
        {0.5, 10, 5},
        {2.0, 10, 20},
        {0.75, 10, 8},
        {1.5, 7, 11},
        {1.0, 0, 0},
    }
    for _, c := range cases {
        if got := majorityGoalFixed(c.percent, c.goal); got != c.want {
            t.Errorf("majorityGoalFixed(%v, %d) = %d, esperado %d", c.percent, c.goal, got, c.want)
        }
    }
}

func TestRoughlyBalancedDeterministic(t *testing.T) {
    a := majorityGoalRoughlyBalanced(50, 0.5, 123)
    b := majorityGoalRoughlyBalanced(50, 0.5, 123)
    if a != b {
        t.Errorf("mesmo seed gerou alvos distintos: %d vs %d", a, b)
    }
}

func TestRoughlyBalancedMeanNearGoal(t *testing.T) {
    const goal = 50
    samples := make([]float64, 0, 2000)
    for seed := int64(0); seed < 2000; seed++ {
        samples = append(samples, float64(majorityGoalRoughlyBalanced(goal, 0.5, seed)))
    }
    mean := stat.Mean(samples, nil)
    // binomial negativa com p = 0.5: média r(1-p)/p = 50, desvio padrão ~10;
    // o erro padrão da média sobre 2000 amostras fica bem abaixo de 1
    if math.Abs(mean-goal) > 2.0 {
        t.Errorf("média do alvo majoritário = %v, esperado próximo de %d", mean, goal)
    }
}

func TestRoughlyBalancedChanceSkew(t *testing.T) {
    const goal = 50
    low := 0.0
    high := 0.0
    for seed := int64(0); seed < 500; seed++ {
        low += float64(majorityGoalRoughlyBalanced(goal, 0.25, seed))
        high += float64(majorityGoalRoughlyBalanced(goal, 0.75, seed))
    }
    if low/500 <= float64(goal) {
        t.Errorf("chance 0.25 deveria produzir mais majoritárias que minoritárias (média %v)", low/500)
    }
    if high/500 >= float64(goal) {
        t.Errorf("chance 0.75 deveria produzir menos majoritárias que minoritárias (média %v)", high/500)
    }
}

func TestRoughlyBalancedFallback(t *testing.T) {
    for _, chance := range []float64{0.0, 1.0, -0.3, 1.5} {
        if got := majorityGoalRoughlyBalanced(30, chance, 7); got != 30 {
            t.Errorf("chance %v: alvo %d, esperado o balanceamento perfeito (30)", chance, got)
        }
    }
}

func TestClampGoal(t *testing.T) {
    if got := clampGoal(20, 10, true); got != 10 {
        t.Errorf("sem reposição deveria limitar ao pool, veio %d", got)
    }
    if got := clampGoal(20, 10, false); got != 20 {
        t.Errorf("com reposição não há limite, veio %d", got)
    }
    if got := clampGoal(5, 10, true); got != 5 {
        t.Errorf("alvo menor que o pool não deveria mudar, veio %d", got)
    }
}
