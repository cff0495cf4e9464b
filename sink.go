package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/carlmjohnson/requests"
	"github.com/go-gota/gota/dataframe"
)

const prefixoEntregable = "datos_entregable_2"

// nomeArquivoEntregable monta o nome do CSV com o timestamp do momento,
// no padrão datos_entregable_2AAAAMMDD_hHHmMM.csv.
func nomeArquivoEntregable(agora time.Time) string {
	return prefixoEntregable + agora.Format("20060102_h15m04") + ".csv"
}

// geraCSVEntregable escreve o DataFrame em dir, com a coluna de índice sem
// nome à esquerda, como no entregável original.
func geraCSVEntregable(df dataframe.DataFrame, dir string, agora time.Time) (string, error) {
	caminho := filepath.Join(dir, nomeArquivoEntregable(agora))
	arquivo, err := os.Create(caminho)
	if err != nil {
		return "", fmt.Errorf("erro ao criar arquivo %s: %w", caminho, err)
	}
	defer arquivo.Close()

	w := csv.NewWriter(arquivo)
	for i, linha := range df.Records() {
		indice := ""
		if i > 0 {
			indice = strconv.Itoa(i - 1)
		}
		if err := w.Write(append([]string{indice}, linha...)); err != nil {
			return "", fmt.Errorf("erro ao escrever CSV em %s: %w", caminho, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("erro ao escrever CSV em %s: %w", caminho, err)
	}

	fmt.Printf("Arquivo %s gerado com sucesso!\n", caminho)
	return caminho, nil
}

// registrosInteiros converte cada célula para inteiro; o que não for
// numérico vira 0, como na carga original do Power BI.
func registrosInteiros(df dataframe.DataFrame) []map[string]int {
	nomes := df.Names()
	registros := make([]map[string]int, 0, df.Nrow())
	for _, linha := range df.Records()[1:] {
		registro := make(map[string]int, len(nomes))
		for i, nome := range nomes {
			valor, err := strconv.ParseFloat(strings.TrimSpace(linha[i]), 64)
			if err != nil {
				valor = 0
			}
			registro[nome] = int(valor)
		}
		registros = append(registros, registro)
	}
	return registros
}

// enviaPowerBI faz o POST do lote de registros no endpoint de ingestão.
func enviaPowerBI(ctx context.Context, url string, registros []map[string]int) error {
	err := requests.
		URL(url).
		ContentType("application/json").
		BodyJSON(&registros).
		Fetch(ctx)
	if err != nil {
		return fmt.Errorf("erro ao enviar dados ao Power BI: %w", err)
	}
	fmt.Println("Dados enviados ao Power BI com sucesso.")
	return nil
}
