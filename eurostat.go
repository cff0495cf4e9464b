package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/carlmjohnson/requests"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

const (
	urlBaseEurostat = "https://ec.europa.eu/eurostat/api/dissemination/sdmx/2.1/data"
	codigoEurostat  = "demo_fabortord"

	colGeo = `geo\TIME_PERIOD`
)

// buscaDadosEurostat baixa o dataset no formato TSV da API de disseminação e
// devolve a matriz crua (header + linhas), já com as dimensões separadas em
// colunas próprias.
func buscaDadosEurostat(ctx context.Context, base, codigo string) ([][]string, error) {
	var corpo string
	err := requests.
		URL(fmt.Sprintf("%s/%s", base, codigo)).
		Param("format", "TSV").
		Param("compressed", "false").
		ToString(&corpo).
		Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar dataset %s no Eurostat: %w", codigo, err)
	}
	return parseTSVEurostat(corpo)
}

// parseTSVEurostat interpreta o TSV do Eurostat: o primeiro campo de cada
// linha junta as dimensões por vírgula, os demais trazem um valor por ano.
func parseTSVEurostat(corpo string) ([][]string, error) {
	r := csv.NewReader(strings.NewReader(corpo))
	r.Comma = '\t'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	linhas, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("erro ao ler TSV do Eurostat: %w", err)
	}
	if len(linhas) == 0 || len(linhas[0]) < 2 {
		return nil, fmt.Errorf("TSV do Eurostat vazio ou sem colunas de ano")
	}

	var matriz [][]string
	for i, linha := range linhas {
		if len(linha) == 0 {
			continue
		}
		dims := strings.Split(linha[0], ",")
		campos := make([]string, 0, len(dims)+len(linha)-1)
		campos = append(campos, dims...)
		for _, campo := range linha[1:] {
			campos = append(campos, strings.TrimSpace(campo))
		}
		if len(matriz) > 0 && len(campos) != len(matriz[0]) {
			return nil, fmt.Errorf("linha %d do TSV tem %d campos, header tem %d", i+1, len(campos), len(matriz[0]))
		}
		matriz = append(matriz, campos)
	}
	return matriz, nil
}

// normalizaEurostat aplica o tratamento do entregável: renomeia a coluna de
// geografia, descarta os metadados, mantém só a fatia TOTAL, agrupa por geo
// somando as colunas de ano e transpõe para ter os anos como linhas.
func normalizaEurostat(matriz [][]string) (dataframe.DataFrame, error) {
	df := dataframe.LoadRecords(matriz, dataframe.DetectTypes(false), dataframe.DefaultType(series.String))
	if df.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("erro ao montar DataFrame do Eurostat: %w", df.Error())
	}

	df = df.Rename("geo", colGeo)
	df = filtraTotales(df, true)
	df = df.Drop([]string{"freq", "unit", "age", "ord_brth"})
	if df.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("colunas esperadas ausentes no dataset do Eurostat: %w", df.Error())
	}

	nomes := df.Names()
	idxGeo := -1
	for i, nome := range nomes {
		if nome == "geo" {
			idxGeo = i
			break
		}
	}
	if idxGeo == -1 {
		return dataframe.DataFrame{}, fmt.Errorf("coluna geo ausente no dataset do Eurostat")
	}

	var anos []int
	var idxAnos []int
	for i, nome := range nomes {
		if i == idxGeo {
			continue
		}
		ano, err := strconv.Atoi(strings.TrimSpace(nome))
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("rótulo de ano inválido no header do Eurostat: %q", nome)
		}
		anos = append(anos, ano)
		idxAnos = append(idxAnos, i)
	}

	// Agrupa por geo somando as colunas de ano, como o groupby('geo').sum()
	somas := map[string][]float64{}
	registros := df.Records()
	for _, linha := range registros[1:] {
		geo := linha[idxGeo]
		if _, ok := somas[geo]; !ok {
			somas[geo] = make([]float64, len(idxAnos))
		}
		for j, idx := range idxAnos {
			somas[geo][j] += valorEurostat(linha[idx])
		}
	}

	geos := make([]string, 0, len(somas))
	for geo := range somas {
		geos = append(geos, geo)
	}
	sort.Strings(geos)

	// Transpõe: uma linha por ano, uma coluna por geo
	transposta := [][]string{append([]string{"Year"}, geos...)}
	for j, ano := range anos {
		linha := make([]string, 0, len(geos)+1)
		linha = append(linha, strconv.Itoa(ano))
		for _, geo := range geos {
			linha = append(linha, strconv.FormatFloat(somas[geo][j], 'f', -1, 64))
		}
		transposta = append(transposta, linha)
	}

	resultado := dataframe.LoadRecords(transposta,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(map[string]series.Type{"Year": series.Int}),
	)
	if resultado.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("erro ao transpor dataset do Eurostat: %w", resultado.Error())
	}
	return resultado, nil
}

// filtraTotales mantém só as linhas da categoria TOTAL. O script original
// calculava o filtro de age e descartava o resultado, valendo na prática só
// o de ord_brth; aqui os dois são aplicados de fato (conEdad=false reproduz
// o comportamento antigo).
func filtraTotales(df dataframe.DataFrame, conEdad bool) dataframe.DataFrame {
	if conEdad {
		df = df.Filter(dataframe.F{Colname: "age", Comparator: series.Eq, Comparando: "TOTAL"})
	}
	return df.Filter(dataframe.F{Colname: "ord_brth", Comparator: series.Eq, Comparando: "TOTAL"})
}

// valorEurostat converte uma célula do TSV em número. ":" marca valor
// ausente e letras ao final são flags de observação ("1224 e").
func valorEurostat(campo string) float64 {
	campo = strings.TrimSpace(campo)
	if campo == "" || strings.HasPrefix(campo, ":") {
		return 0
	}
	if i := strings.IndexByte(campo, ' '); i >= 0 {
		campo = campo[:i]
	}
	v, err := strconv.ParseFloat(campo, 64)
	if err != nil {
		return 0
	}
	return v
}
