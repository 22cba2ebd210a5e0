package normalize

import (
	"fmt"

	"github.com/tidwall/gjson"

	"github.com/zykor/contahub-sync-go/internal/domain"
)

// Rows dispatches a raw payload to the normalizer for its report kind and
// returns the rows as writable records. An empty or absent list yields an
// empty slice, not an error.
func Rows(dataType domain.DataType, raw []byte) ([]domain.Record, error) {
	switch dataType {
	case domain.TypeHourlySales:
		return asRecords(HourlySales(raw)), nil
	case domain.TypePayments:
		return asRecords(Payments(raw)), nil
	case domain.TypePeriod:
		return asRecords(PeriodSummary(raw)), nil
	case domain.TypeTiming:
		return asRecords(ItemTiming(raw)), nil
	case domain.TypeAnalytical:
		return asRecords(Analytical(raw)), nil
	default:
		return nil, fmt.Errorf("unsupported data type: %s", dataType)
	}
}

func asRecords[R domain.Record](rows []R) []domain.Record {
	out := make([]domain.Record, len(rows))
	for i, r := range rows {
		out[i] = r
	}
	return out
}

func list(raw []byte) []gjson.Result {
	l := gjson.GetBytes(raw, "list")
	if !l.IsArray() {
		return nil
	}
	return l.Array()
}

// HourlySales normalizes a fatporhora payload (revenue per hour of day).
func HourlySales(raw []byte) []*domain.HourlySalesRow {
	items := list(raw)
	rows := make([]*domain.HourlySalesRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, &domain.HourlySalesRow{
			DtGerencial: DateOnly(item.Get("vd_dtgerencial")),
			Hora:        Hour(item.Get("hora")),
			Valor:       Float(item.Get("$valor")),
			Dds:         Str(item.Get("dds")),
			Dia:         Str(item.Get("dia")),
			Qtd:         Float(item.Get("qtd")),
		})
	}
	return rows
}

// Payments normalizes a pagamentos payload (one settled payment per row).
func Payments(raw []byte) []*domain.PaymentRow {
	items := list(raw)
	rows := make([]*domain.PaymentRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, &domain.PaymentRow{
			Vd:             Str(item.Get("vd")),
			Trn:            Str(item.Get("trn")),
			DtGerencial:    DateOnly(item.Get("dt_gerencial")),
			HrLancamento:   Str(item.Get("hr_lancamento")),
			HrTransacao:    Str(item.Get("hr_transacao")),
			DtTransacao:    DateOnly(item.Get("dt_transacao")),
			Mesa:           Str(item.Get("mesa")),
			Cli:            Int(item.Get("cli")),
			Cliente:        Str(item.Get("cliente")),
			VrPagamentos:   Float(item.Get("$vr_pagamentos")),
			Pag:            Str(item.Get("pag")),
			Valor:          Float(item.Get("$valor")),
			Taxa:           Float(item.Get("$taxa")),
			Perc:           Float(item.Get("$perc")),
			Liquido:        Float(item.Get("$liquido")),
			Tipo:           Str(item.Get("tipo")),
			Meio:           Str(item.Get("meio")),
			Cartao:         Str(item.Get("cartao")),
			Autorizacao:    Str(item.Get("autorizacao")),
			DtCredito:      DateOnly(item.Get("dt_credito")),
			UsrAbriu:       Str(item.Get("usr_abriu")),
			UsrLancou:      Str(item.Get("usr_lancou")),
			UsrAceitou:     Str(item.Get("usr_aceitou")),
			MotivoDesconto: Str(item.Get("motivodesconto")),
		})
	}
	return rows
}

// PeriodSummary normalizes a periodo payload (one sale/ticket per row)
// and derives the week number from the business date.
func PeriodSummary(raw []byte) []*domain.PeriodRow {
	items := list(raw)
	rows := make([]*domain.PeriodRow, 0, len(items))
	for _, item := range items {
		dt := DateOnly(item.Get("dt_gerencial"))
		semana := 1
		if dt != nil {
			semana = WeekOfYear(*dt)
		}
		rows = append(rows, &domain.PeriodRow{
			DtGerencial:   dt,
			TipoVenda:     Str(item.Get("tipovenda")),
			VdMesaDesc:    Str(item.Get("vd_mesadesc")),
			VdLocalizacao: Str(item.Get("vd_localizacao")),
			ChtNome:       Str(item.Get("cht_nome")),
			CliNome:       Str(item.Get("cli_nome")),
			CliDtNasc:     BirthDate(item.Get("cli_dtnasc")),
			CliEmail:      Str(item.Get("cli_email")),
			CliFone:       Str(item.Get("cli_fone")),
			UsrAbriu:      Str(item.Get("usr_abriu")),
			Pessoas:       Int(item.Get("pessoas")),
			QtdItens:      Int(item.Get("qtd_itens")),
			VrPagamentos:  Float(item.Get("$vr_pagamentos")),
			VrProdutos:    Float(item.Get("$vr_produtos")),
			VrRepique:     Float(item.Get("$vr_repique")),
			VrCouvert:     Float(item.Get("$vr_couvert")),
			VrDesconto:    Float(item.Get("$vr_desconto")),
			Motivo:        Str(item.Get("motivo")),
			DtContabil:    DateOnly(item.Get("dt_contabil")),
			UltimoPedido:  Str(item.Get("ultimo_pedido")),
			VdDtContabil:  DateOnly(item.Get("vd_dtcontabil")),
			Semana:        semana,
		})
	}
	return rows
}

// ItemTiming normalizes a tempo payload (kitchen production timing per
// item). The t0..t3 timestamps arrive with a -03 offset that is stripped.
func ItemTiming(raw []byte) []*domain.TimingRow {
	items := list(raw)
	rows := make([]*domain.TimingRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, &domain.TimingRow{
			Data:         DateOnly(item.Get("dia")),
			VdMesaDesc:   Str(item.Get("vd_mesadesc")),
			Itm:          Str(item.Get("itm")),
			Prd:          NullableInt(item.Get("prd")),
			PrdIDExterno: Str(item.Get("prd")),
			PrdDesc:      Str(item.Get("prd_desc")),
			GrpDesc:      Str(item.Get("grp_desc")),
			LocDesc:      Str(item.Get("loc_desc")),
			UsrLancou:    Str(item.Get("usr_lancou")),
			ItmQtd:       Int(item.Get("itm_qtd")),
			T0Lancamento: LocalTimestamp(item.Get("t0-lancamento")),
			T1ProdIni:    LocalTimestamp(item.Get("t1-prodini")),
			T2ProdFim:    LocalTimestamp(item.Get("t2-prodfim")),
			T3Entrega:    LocalTimestamp(item.Get("t3-entrega")),
			T0T2:         NullableInt(item.Get("t0-t2")),
			T0T3:         NullableInt(item.Get("t0-t3")),
		})
	}
	return rows
}

// Analytical normalizes an analitico payload (per-item sale detail).
func Analytical(raw []byte) []*domain.AnalyticalRow {
	items := list(raw)
	rows := make([]*domain.AnalyticalRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, &domain.AnalyticalRow{
			VdMesaDesc:     Str(item.Get("vd_mesadesc")),
			VdLocalizacao:  Str(item.Get("vd_localizacao")),
			Itm:            Int(item.Get("itm")),
			Trn:            Int(item.Get("trn")),
			TrnDesc:        Str(item.Get("trn_desc")),
			Prefixo:        Str(item.Get("prefixo")),
			Tipo:           Str(item.Get("tipo")),
			TipoVenda:      Str(item.Get("tipovenda")),
			Ano:            Int(item.Get("ano")),
			Mes:            Int(item.Get("mes")),
			TrnDtGerencial: DateOnly(item.Get("trn_dtgerencial")),
			UsrLancou:      Str(item.Get("usr_lancou")),
			Prd:            Str(item.Get("prd")),
			PrdDesc:        Str(item.Get("prd_desc")),
			GrpDesc:        Str(item.Get("grp_desc")),
			LocDesc:        Str(item.Get("loc_desc")),
			Qtd:            Float(item.Get("qtd")),
			Desconto:       Float(item.Get("desconto")),
			ValorFinal:     Float(item.Get("valorfinal")),
			Custo:          Float(item.Get("custo")),
			ItmObs:         Str(item.Get("itm_obs")),
			ComandaOrigem:  Str(item.Get("comandaorigem")),
			ItemOrigem:     Str(item.Get("itemorigem")),
		})
	}
	return rows
}
