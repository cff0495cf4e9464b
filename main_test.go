package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestExecutaPipelineFimAFim(t *testing.T) {
	srvIne := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"Data":[{"Valor":10,"Anyo":2020},{"Valor":5,"Anyo":2020},{"Valor":7,"Anyo":2021}]}]`))
	}))
	defer srvIne.Close()

	tsv := "freq,unit,age,ord_brth,geo\\TIME_PERIOD\t2020 \t2021 \t2022 \n" +
		"A,NR,TOTAL,TOTAL,ES\t10 \t20 \t30 \n" +
		"A,NR,TOTAL,TOTAL,AT\t0 \t0 \t0 \n"
	srvUe := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(tsv))
	}))
	defer srvUe.Close()

	var enviado []map[string]int
	srvBI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&enviado); err != nil {
			t.Errorf("payload do Power BI não é JSON válido: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srvBI.Close()

	dir := t.TempDir()
	err := executaPipeline(context.Background(), srvIne.URL, srvUe.URL, "demo_fabortord", srvBI.URL, dir)
	if err != nil {
		t.Fatalf("erro inesperado no pipeline: %v", err)
	}

	arquivos, err := filepath.Glob(filepath.Join(dir, prefixoEntregable+"*.csv"))
	if err != nil || len(arquivos) != 1 {
		t.Fatalf("esperava exatamente 1 CSV do entregável, veio %v (err %v)", arquivos, err)
	}

	conteudo, err := os.ReadFile(arquivos[0])
	if err != nil {
		t.Fatalf("erro ao ler CSV: %v", err)
	}
	linhas := strings.Split(strings.TrimSpace(string(conteudo)), "\n")
	if len(linhas) != 3 {
		t.Fatalf("esperava header + anos 2020 e 2021, veio %d linhas", len(linhas))
	}
	if strings.Contains(linhas[0], "AT") {
		t.Errorf("coluna AT toda zerada deveria ter sido descartada: %q", linhas[0])
	}
	if !strings.Contains(linhas[0], "pred_place_holder") {
		t.Errorf("header sem pred_place_holder: %q", linhas[0])
	}
	if !strings.HasPrefix(linhas[1], "0,2020,") || !strings.HasPrefix(linhas[2], "1,2021,") {
		t.Errorf("linhas de dados erradas: %v", linhas[1:])
	}

	if len(enviado) != 2 {
		t.Fatalf("Power BI deveria receber 2 registros, veio %d", len(enviado))
	}
	if enviado[0]["Year"] != 2020 || enviado[0]["Spanish total value"] != 15 {
		t.Errorf("primeiro registro errado: %v", enviado[0])
	}
	if enviado[1]["Year"] != 2021 || enviado[1]["Spanish total value"] != 7 {
		t.Errorf("segundo registro errado: %v", enviado[1])
	}
	for _, registro := range enviado {
		if registro["pred_place_holder"] != 1 {
			t.Errorf("pred_place_holder deveria ser 1: %v", registro)
		}
	}
}

func TestExecutaPipelineFalhaNoINEParaTudo(t *testing.T) {
	srvIne := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srvIne.Close()

	srvUe := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("freq,unit,age,ord_brth,geo\\TIME_PERIOD\t2020 \nA,NR,TOTAL,TOTAL,ES\t1 \n"))
	}))
	defer srvUe.Close()

	dir := t.TempDir()
	err := executaPipeline(context.Background(), srvIne.URL, srvUe.URL, "demo_fabortord", "", dir)
	if err == nil {
		t.Fatal("esperava erro quando a busca no INE falha")
	}

	arquivos, _ := filepath.Glob(filepath.Join(dir, prefixoEntregable+"*.csv"))
	if len(arquivos) != 0 {
		t.Errorf("nenhum CSV deveria ser gerado em caso de falha, veio %v", arquivos)
	}
}

func TestExecutaPipelineSemAnosEmComum(t *testing.T) {
	srvIne := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"Data":[{"Valor":1,"Anyo":1990}]}]`))
	}))
	defer srvIne.Close()

	srvUe := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("freq,unit,age,ord_brth,geo\\TIME_PERIOD\t2020 \nA,NR,TOTAL,TOTAL,ES\t1 \n"))
	}))
	defer srvUe.Close()

	dir := t.TempDir()
	if err := executaPipeline(context.Background(), srvIne.URL, srvUe.URL, "demo_fabortord", "", dir); err != nil {
		t.Fatalf("merge vazio não é erro: %v", err)
	}
	arquivos, _ := filepath.Glob(filepath.Join(dir, prefixoEntregable+"*.csv"))
	if len(arquivos) != 0 {
		t.Errorf("merge vazio não deveria gerar CSV, veio %v", arquivos)
	}
}
