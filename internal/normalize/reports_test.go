package normalize_test

import (
	"testing"

	"github.com/zykor/contahub-sync-go/internal/domain"
	"github.com/zykor/contahub-sync-go/internal/normalize"
)

// emptyItem exercises the total-defaulting contract: every extraction must
// fall back instead of failing when the raw item has no fields at all.
const emptyItem = `{"list": [{}]}`

func TestHourlySales_TotalDefaulting(t *testing.T) {
	rows := normalize.HourlySales([]byte(emptyItem))
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.DtGerencial != nil {
		t.Errorf("expected null date, got %v", *r.DtGerencial)
	}
	if r.Hora != 0 || r.Valor != 0 || r.Qtd != 0 {
		t.Errorf("expected zero numerics, got hora=%d valor=%v qtd=%v", r.Hora, r.Valor, r.Qtd)
	}
	if r.Dds != "" || r.Dia != "" {
		t.Errorf("expected empty strings, got dds=%q dia=%q", r.Dds, r.Dia)
	}
}

func TestHourlySales_Fields(t *testing.T) {
	raw := `{"list": [
		{"vd_dtgerencial": "2025-06-01T00:00:00", "hora": "14:30", "$valor": "150.50", "dds": "7", "dia": "domingo", "qtd": 12},
		{"vd_dtgerencial": "2025-06-01T00:00:00", "hora": 7, "$valor": 80, "dds": "7", "dia": "domingo", "qtd": 3}
	]}`
	rows := normalize.HourlySales([]byte(raw))
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Hora != 14 {
		t.Errorf("expected hour 14 from HH:MM, got %d", rows[0].Hora)
	}
	if rows[0].Valor != 150.50 {
		t.Errorf("expected 150.50, got %v", rows[0].Valor)
	}
	if rows[1].Hora != 7 {
		t.Errorf("expected bare-number hour 7, got %d", rows[1].Hora)
	}
	if rows[0].DtGerencial == nil || *rows[0].DtGerencial != "2025-06-01" {
		t.Errorf("expected truncated date, got %v", rows[0].DtGerencial)
	}
}

func TestPayments_TotalDefaulting(t *testing.T) {
	rows := normalize.Payments([]byte(emptyItem))
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.DtGerencial != nil || r.DtTransacao != nil || r.DtCredito != nil {
		t.Error("expected all dates null")
	}
	if r.VrPagamentos != 0 || r.Valor != 0 || r.Taxa != 0 || r.Perc != 0 || r.Liquido != 0 || r.Cli != 0 {
		t.Error("expected all numerics zero")
	}
	if r.Vd != "" || r.Meio != "" || r.Cartao != "" {
		t.Error("expected all strings empty")
	}
}

func TestPayments_MoneyFields(t *testing.T) {
	raw := `{"list": [{
		"vd": "123", "trn": "456",
		"dt_gerencial": "2025-06-01T00:00:00",
		"mesa": "15", "cli": 88, "cliente": "Fulano",
		"$vr_pagamentos": "250.00", "$valor": "250.00", "$taxa": "7.50",
		"$perc": "3.0", "$liquido": "242.50",
		"meio": "credito", "pag": "visa"
	}]}`
	rows := normalize.Payments([]byte(raw))
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.Liquido != 242.50 || r.Taxa != 7.50 {
		t.Errorf("expected money parsed from $-prefixed fields, got liquido=%v taxa=%v", r.Liquido, r.Taxa)
	}
	if r.Cli != 88 {
		t.Errorf("expected cli 88, got %d", r.Cli)
	}
	if r.DtGerencial == nil || *r.DtGerencial != "2025-06-01" {
		t.Errorf("expected 2025-06-01, got %v", r.DtGerencial)
	}
}

func TestPeriodSummary_TotalDefaulting(t *testing.T) {
	rows := normalize.PeriodSummary([]byte(emptyItem))
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.DtGerencial != nil || r.CliDtNasc != nil || r.DtContabil != nil || r.VdDtContabil != nil {
		t.Error("expected all dates null")
	}
	if r.Pessoas != 0 || r.QtdItens != 0 || r.VrPagamentos != 0 || r.VrDesconto != 0 {
		t.Error("expected all numerics zero")
	}
	if r.Semana != 1 {
		t.Errorf("expected default week 1, got %d", r.Semana)
	}
}

func TestPeriodSummary_WeekAndBirthDate(t *testing.T) {
	raw := `{"list": [
		{"dt_gerencial": "2025-01-01T00:00:00", "cli_dtnasc": "0001-01-01T00:00:00", "pessoas": "4", "$vr_produtos": "320.40"},
		{"dt_gerencial": "2025-01-04T00:00:00", "cli_dtnasc": "1992-08-20T00:00:00"}
	]}`
	rows := normalize.PeriodSummary([]byte(raw))
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Semana != 1 {
		t.Errorf("expected week 1 for 2025-01-01, got %d", rows[0].Semana)
	}
	if rows[0].CliDtNasc != nil {
		t.Errorf("expected birth-date sentinel mapped to null, got %v", *rows[0].CliDtNasc)
	}
	if rows[0].Pessoas != 4 {
		t.Errorf("expected pessoas 4, got %d", rows[0].Pessoas)
	}
	if rows[0].VrProdutos != 320.40 {
		t.Errorf("expected 320.40, got %v", rows[0].VrProdutos)
	}
	if rows[1].Semana != 2 {
		t.Errorf("expected week 2 for 2025-01-04, got %d", rows[1].Semana)
	}
	if rows[1].CliDtNasc == nil || *rows[1].CliDtNasc != "1992-08-20" {
		t.Errorf("expected real birth date kept, got %v", rows[1].CliDtNasc)
	}
}

func TestItemTiming_TotalDefaulting(t *testing.T) {
	rows := normalize.ItemTiming([]byte(emptyItem))
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.Data != nil || r.Prd != nil || r.T0Lancamento != nil || r.T0T2 != nil || r.T0T3 != nil {
		t.Error("expected all nullable fields null")
	}
	if r.ItmQtd != 0 {
		t.Errorf("expected zero qty, got %d", r.ItmQtd)
	}
}

func TestItemTiming_Timestamps(t *testing.T) {
	raw := `{"list": [{
		"dia": "2025-06-01T00:00:00",
		"prd": 42, "prd_desc": "Caipirinha", "itm_qtd": 2,
		"t0-lancamento": "2025-06-01T20:15:00-0300",
		"t2-prodfim": "2025-06-01T20:19:30-0300",
		"t0-t2": 270, "t0-t3": 0
	}]}`
	rows := normalize.ItemTiming([]byte(raw))
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.Data == nil || *r.Data != "2025-06-01" {
		t.Errorf("expected date from dia, got %v", r.Data)
	}
	if r.T0Lancamento == nil || *r.T0Lancamento != "2025-06-01T20:15:00" {
		t.Errorf("expected offset stripped, got %v", r.T0Lancamento)
	}
	if r.Prd == nil || *r.Prd != 42 {
		t.Errorf("expected prd 42, got %v", r.Prd)
	}
	if r.T0T2 == nil || *r.T0T2 != 270 {
		t.Errorf("expected t0_t2 270, got %v", r.T0T2)
	}
	if r.T0T3 != nil {
		t.Errorf("expected zero timing mapped to null, got %v", *r.T0T3)
	}
}

func TestAnalytical_TotalDefaulting(t *testing.T) {
	rows := normalize.Analytical([]byte(emptyItem))
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	r := rows[0]
	if r.Qtd != 0 || r.Desconto != 0 || r.ValorFinal != 0 || r.Custo != 0 || r.Ano != 0 || r.Mes != 0 {
		t.Error("expected all numerics zero")
	}
	if r.TrnDtGerencial != nil {
		t.Errorf("expected null date, got %v", *r.TrnDtGerencial)
	}
}

func TestRows_EmptyAndUnknown(t *testing.T) {
	for _, dt := range domain.DataTypes {
		rows, err := normalize.Rows(dt, []byte(`{"list": []}`))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", dt, err)
		}
		if len(rows) != 0 {
			t.Errorf("%s: expected empty result for empty list, got %d", dt, len(rows))
		}

		rows, err = normalize.Rows(dt, []byte(`not json at all`))
		if err != nil {
			t.Fatalf("%s: malformed payload should not error, got %v", dt, err)
		}
		if len(rows) != 0 {
			t.Errorf("%s: expected empty result for malformed payload", dt)
		}
	}

	if _, err := normalize.Rows(domain.DataType("estoque"), []byte(`{}`)); err == nil {
		t.Error("expected error for unknown data type")
	}
}
