package models

// IneTabla é um elemento da resposta DATOS_TABLA do serviço wstempus do INE.
type IneTabla struct {
	Nombre string    `json:"Nombre"`
	Data   []IneDato `json:"Data"`
}

// IneDato é uma observação (valor, ano) da série.
type IneDato struct {
	Valor float64 `json:"Valor"`
	Anyo  int     `json:"Anyo"`
}
