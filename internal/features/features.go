package features

import (
    "strings"
    "time"

    "unskewedbag/internal/data"
)

var cats = []string{"Alimentação", "Transporte", "Taxi", "Pedágio", "Hospedagem"}

// Names devolve os nomes dos atributos na mesma ordem de Vectorize.
func Names() []string {
    names := []string{"Amount", "IntervaloSolicitante", "DiaSemana", "Mes",
        "MesmoAprovador", "SolicitanteViajante", "ValorInteiro", "ValorMultiplo5"}
    for _, c := range cats {
        names = append(names, "Cat_"+c)
    }
    return names
}

func Vectorize(e data.Expense) []float64 {
    vec := []float64{}

    vec = append(vec, e.Amount)

    intervalDays := float64(int(e.TravelDate.Sub(e.RequestDate).Hours() / 24))
    vec = append(vec, intervalDays)

    vec = append(vec, float64(int(e.RequestDate.Weekday())))
    vec = append(vec, float64(int(e.RequestDate.Month())))

    sameApprover := boolToFloat(e.ApproverID == e.RequesterID)
    reqIsTraveller := boolToFloat(e.RequesterID == e.TravellerID)
    valorInteiro := boolToFloat(e.Amount == float64(int(e.Amount)))
    valorMultiplo5 := boolToFloat(int(e.Amount)%5 == 0)
    vec = append(vec, sameApprover, reqIsTraveller, valorInteiro, valorMultiplo5)

    catLower := strings.ToLower(e.Category)
    for _, c := range cats {
        if strings.ToLower(c) == catLower {
            vec = append(vec, 1.0)
        } else {
            vec = append(vec, 0.0)
        }
    }

    return vec
}

// ToInstance converte uma despesa em instância com a classe binária de fraude.
func ToInstance(e data.Expense, fraud int) data.Instance {
    return data.Instance{Values: Vectorize(e), Class: float64(fraud)}
}

// NewFraudDataset devolve um dataset vazio com o esquema das despesas.
func NewFraudDataset() *data.Dataset {
    return data.NewDataset(Names(), 2, false)
}

func boolToFloat(b bool) float64 { if b { return 1.0 } ; return 0.0 }

func BuildExpense(
    expenseID, requestID, requesterID, travellerID, approverID string,
    requestDate, travelDate time.Time,
    category, description string,
    amount float64,
    currency, jobTitle, department, approvalStatus string,
) data.Expense {
    return data.Expense{
        ExpenseID:      expenseID,
        RequestID:      requestID,
        RequesterID:    requesterID,
        TravellerID:    travellerID,
        ApproverID:     approverID,
        RequestDate:    requestDate,
        TravelDate:     travelDate,
        Category:       category,
        Description:    description,
        Amount:         amount,
        Currency:       currency,
        JobTitle:       jobTitle,
        Department:     department,
        ApprovalStatus: approvalStatus,
    }
}
