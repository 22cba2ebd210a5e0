package domain

// Record is a normalized row ready for an idempotent batch write. The
// upserter stamps tenant and idempotency identity immediately before the
// write call; normalizers leave both zero.
type Record interface {
	SetIdentity(barID int64, idempotencyKey string)
}

// RecordIdentity carries the multi-tenant partition key and the uniqueness
// token every typed table enforces via its idempotency_key constraint.
type RecordIdentity struct {
	BarID          int64  `json:"bar_id"`
	IdempotencyKey string `json:"idempotency_key"`
}

// SetIdentity implements Record.
func (r *RecordIdentity) SetIdentity(barID int64, key string) {
	r.BarID = barID
	r.IdempotencyKey = key
}

// HourlySalesRow is one normalized fatporhora entry (sales per hour).
type HourlySalesRow struct {
	RecordIdentity
	DtGerencial *string `json:"vd_dtgerencial"`
	Hora        int     `json:"hora"`
	Valor       float64 `json:"valor"`
	Dds         string  `json:"dds"`
	Dia         string  `json:"dia"`
	Qtd         float64 `json:"qtd"`
}

// PaymentRow is one normalized pagamentos entry.
type PaymentRow struct {
	RecordIdentity
	Vd             string  `json:"vd"`
	Trn            string  `json:"trn"`
	DtGerencial    *string `json:"dt_gerencial"`
	HrLancamento   string  `json:"hr_lancamento"`
	HrTransacao    string  `json:"hr_transacao"`
	DtTransacao    *string `json:"dt_transacao"`
	Mesa           string  `json:"mesa"`
	Cli            int64   `json:"cli"`
	Cliente        string  `json:"cliente"`
	VrPagamentos   float64 `json:"vr_pagamentos"`
	Pag            string  `json:"pag"`
	Valor          float64 `json:"valor"`
	Taxa           float64 `json:"taxa"`
	Perc           float64 `json:"perc"`
	Liquido        float64 `json:"liquido"`
	Tipo           string  `json:"tipo"`
	Meio           string  `json:"meio"`
	Cartao         string  `json:"cartao"`
	Autorizacao    string  `json:"autorizacao"`
	DtCredito      *string `json:"dt_credito"`
	UsrAbriu       string  `json:"usr_abriu"`
	UsrLancou      string  `json:"usr_lancou"`
	UsrAceitou     string  `json:"usr_aceitou"`
	MotivoDesconto string  `json:"motivodesconto"`
}

// PeriodRow is one normalized periodo entry (one sale/ticket per row).
// Semana is derived from dt_gerencial with the historical week formula.
type PeriodRow struct {
	RecordIdentity
	DtGerencial   *string `json:"dt_gerencial"`
	TipoVenda     string  `json:"tipovenda"`
	VdMesaDesc    string  `json:"vd_mesadesc"`
	VdLocalizacao string  `json:"vd_localizacao"`
	ChtNome       string  `json:"cht_nome"`
	CliNome       string  `json:"cli_nome"`
	CliDtNasc     *string `json:"cli_dtnasc"`
	CliEmail      string  `json:"cli_email"`
	CliFone       string  `json:"cli_fone"`
	UsrAbriu      string  `json:"usr_abriu"`
	Pessoas       int64   `json:"pessoas"`
	QtdItens      int64   `json:"qtd_itens"`
	VrPagamentos  float64 `json:"vr_pagamentos"`
	VrProdutos    float64 `json:"vr_produtos"`
	VrRepique     float64 `json:"vr_repique"`
	VrCouvert     float64 `json:"vr_couvert"`
	VrDesconto    float64 `json:"vr_desconto"`
	Motivo        string  `json:"motivo"`
	DtContabil    *string `json:"dt_contabil"`
	UltimoPedido  string  `json:"ultimo_pedido"`
	VdDtContabil  *string `json:"vd_dtcontabil"`
	Semana        int     `json:"semana"`
}

// TimingRow is one normalized tempo entry (item production timing).
// The four t* timestamps are local timestamps with the offset stripped.
type TimingRow struct {
	RecordIdentity
	Data         *string `json:"data"`
	VdMesaDesc   string  `json:"vd_mesadesc"`
	Itm          string  `json:"itm"`
	Prd          *int64  `json:"prd"`
	PrdIDExterno string  `json:"prd_idexterno"`
	PrdDesc      string  `json:"prd_desc"`
	GrpDesc      string  `json:"grp_desc"`
	LocDesc      string  `json:"loc_desc"`
	UsrLancou    string  `json:"usr_lancou"`
	ItmQtd       int64   `json:"itm_qtd"`
	T0Lancamento *string `json:"t0_lancamento"`
	T1ProdIni    *string `json:"t1_prodini"`
	T2ProdFim    *string `json:"t2_prodfim"`
	T3Entrega    *string `json:"t3_entrega"`
	T0T2         *int64  `json:"t0_t2"`
	T0T3         *int64  `json:"t0_t3"`
}

// AnalyticalRow is one normalized analitico entry (per-item sale detail).
type AnalyticalRow struct {
	RecordIdentity
	VdMesaDesc    string  `json:"vd_mesadesc"`
	VdLocalizacao string  `json:"vd_localizacao"`
	Itm           int64   `json:"itm"`
	Trn           int64   `json:"trn"`
	TrnDesc       string  `json:"trn_desc"`
	Prefixo       string  `json:"prefixo"`
	Tipo          string  `json:"tipo"`
	TipoVenda     string  `json:"tipovenda"`
	Ano           int64   `json:"ano"`
	Mes           int64   `json:"mes"`
	TrnDtGerencial *string `json:"trn_dtgerencial"`
	UsrLancou     string  `json:"usr_lancou"`
	Prd           string  `json:"prd"`
	PrdDesc       string  `json:"prd_desc"`
	GrpDesc       string  `json:"grp_desc"`
	LocDesc       string  `json:"loc_desc"`
	Qtd           float64 `json:"qtd"`
	Desconto      float64 `json:"desconto"`
	ValorFinal    float64 `json:"valorfinal"`
	Custo         float64 `json:"custo"`
	ItmObs        string  `json:"itm_obs"`
	ComandaOrigem string  `json:"comandaorigem"`
	ItemOrigem    string  `json:"itemorigem"`
}
