package models

import "unskewedbag/internal/data"

// partitionByClass separa as instâncias em grupo minoritário e majoritário
// preservando a ordem relativa. A classe é lida como binária: valor > 0 é o
// grupo "majoritário codificado", o restante o "minoritário codificado".
// Se a atribuição inicial violar |minoritário| <= |majoritário| os papéis são
// trocados; em empate o grupo <= 0 fica como minoritário.
func partitionByClass(ds *data.Dataset) (minority, majority []data.Instance) {
    for _, in := range ds.Instances {
        if in.Class > 0 {
            majority = append(majority, in)
        } else {
            minority = append(minority, in)
        }
    }
    if len(minority) > len(majority) {
        minority, majority = majority, minority
    }
    return minority, majority
}
