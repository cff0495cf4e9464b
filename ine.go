package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"unicode/utf8"

	"entregable2/models"

	"github.com/carlmjohnson/requests"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

const urlINE = "https://servicios.ine.es/wstempus/jsCache/es/DATOS_TABLA/46682?tip=AM&"

// buscaDadosINE faz o GET na API do INE e devolve os registros (Valor, Anyo)
// da primeira tabela. Estrutura inesperada vira erro aqui, e não uma quebra
// nos estágios seguintes.
func buscaDadosINE(ctx context.Context, url string) ([]models.IneDato, error) {
	var buf bytes.Buffer
	err := requests.
		URL(url).
		ToBytesBuffer(&buf).
		Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("erro ao buscar dados do INE: %w", err)
	}

	corpo := buf.Bytes()
	// O serviço já respondeu em Latin-1 no passado; decodifica antes do JSON.
	if !utf8.Valid(corpo) {
		decodificado, err := io.ReadAll(transform.NewReader(bytes.NewReader(corpo), charmap.ISO8859_1.NewDecoder()))
		if err != nil {
			return nil, fmt.Errorf("erro ao decodificar resposta do INE: %w", err)
		}
		corpo = decodificado
	}

	var tablas []models.IneTabla
	if err := json.Unmarshal(corpo, &tablas); err != nil {
		return nil, fmt.Errorf("erro ao interpretar JSON do INE: %w", err)
	}
	if len(tablas) == 0 || len(tablas[0].Data) == 0 {
		return nil, fmt.Errorf("estrutura JSON inesperada ou sem dados na resposta do INE")
	}
	return tablas[0].Data, nil
}

// normalizaINE agrupa as observações por ano, soma os valores repetidos e
// monta o DataFrame indexado por Year em ordem crescente.
func normalizaINE(datos []models.IneDato) dataframe.DataFrame {
	totais := map[int]float64{}
	for _, d := range datos {
		totais[d.Anyo] += d.Valor
	}

	anos := make([]int, 0, len(totais))
	for ano := range totais {
		anos = append(anos, ano)
	}
	sort.Ints(anos)

	valores := make([]float64, len(anos))
	for i, ano := range anos {
		valores[i] = totais[ano]
	}

	return dataframe.New(
		series.New(anos, series.Int, "Year"),
		series.New(valores, series.Float, "Spanish total value"),
	)
}
