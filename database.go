package main

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// conectaDB abre a conexão com o Postgres usando as credenciais do .env.
func conectaDB() (*sql.DB, error) {
	err := godotenv.Load(".env")
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar arquivo .env: %v", err)
	}

	host := os.Getenv("HOST")
	port := os.Getenv("PORT")
	user := os.Getenv("USER")
	password := os.Getenv("PASSWORD")
	dbname := os.Getenv("DATABASE")

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, password, dbname)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir conexão com banco de dados: %v", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("erro ao conectar com banco de dados: %v", err)
	}

	return db, nil
}

// carregaEntregable cria a tabela (se preciso) a partir do cabeçalho do CSV
// do entregável e importa as linhas em lotes.
func carregaEntregable(tabela, arquivoCSV string) error {
	db, err := conectaDB()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := criaTabelaDoCSV(db, arquivoCSV, tabela); err != nil {
		return err
	}
	if err := importaCSV(db, arquivoCSV, tabela); err != nil {
		return err
	}

	fmt.Println("✓ Entregável carregado no banco com sucesso!")
	return nil
}

// criaTabelaDoCSV monta o CREATE TABLE a partir do cabeçalho do CSV,
// inferindo o tipo de cada coluna pelas primeiras linhas.
func criaTabelaDoCSV(db *sql.DB, arquivoCSV, tabela string) error {
	f, err := os.Open(arquivoCSV)
	if err != nil {
		return fmt.Errorf("erro ao abrir CSV: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)

	header, err := reader.Read()
	if err != nil {
		return fmt.Errorf("erro ao ler cabeçalho: %w", err)
	}

	// Lê algumas linhas para inferir tipos
	amostras := [][]string{}
	for i := 0; i < 50; i++ {
		linha, err := reader.Read()
		if err != nil {
			break
		}
		amostras = append(amostras, linha)
	}

	var colunas []string
	for i, nome := range header {
		colunas = append(colunas, fmt.Sprintf("%s %s", limpaNomeColuna(nome, i), infereTipo(amostras, i)))
	}

	createSQL := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", tabela, strings.Join(colunas, ", "))
	if _, err := db.Exec(createSQL); err != nil {
		return fmt.Errorf("erro ao criar tabela %s: %w", tabela, err)
	}

	fmt.Printf("✓ Tabela '%s' pronta com %d colunas\n", tabela, len(header))
	return nil
}

// limpaNomeColuna normaliza o nome da coluna para o Postgres; a coluna de
// índice do entregável vem sem nome no CSV.
func limpaNomeColuna(nome string, pos int) string {
	nome = strings.TrimSpace(strings.ToLower(nome))
	if nome == "" {
		if pos == 0 {
			return "indice"
		}
		return fmt.Sprintf("col_%d", pos)
	}
	var b strings.Builder
	for _, r := range nome {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// infereTipo decide entre INTEGER, DECIMAL e TEXT olhando as amostras.
func infereTipo(amostras [][]string, col int) string {
	inteiro := true
	numerico := true
	temValor := false

	for _, linha := range amostras {
		if col >= len(linha) {
			continue
		}
		valor := strings.TrimSpace(linha[col])
		if valor == "" {
			continue
		}
		temValor = true
		if _, err := strconv.Atoi(valor); err != nil {
			inteiro = false
		}
		if _, err := strconv.ParseFloat(valor, 64); err != nil {
			numerico = false
		}
	}

	if !temValor || !numerico {
		return "TEXT"
	}
	if inteiro {
		return "INTEGER"
	}
	return "DECIMAL"
}

// importaCSV insere as linhas do CSV em lotes dentro de uma transação.
func importaCSV(db *sql.DB, arquivoCSV, tabela string) error {
	f, err := os.Open(arquivoCSV)
	if err != nil {
		return err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return err
	}
	for i := range header {
		header[i] = limpaNomeColuna(header[i], i)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	const tamanhoLote = 500
	lote := [][]string{}
	total := 0

	for {
		linha, err := reader.Read()
		if err != nil {
			// Insere o último lote
			if len(lote) > 0 {
				if err := insereLote(tx, tabela, header, lote); err != nil {
					return err
				}
				total += len(lote)
			}
			break
		}

		lote = append(lote, linha)
		if len(lote) >= tamanhoLote {
			if err := insereLote(tx, tabela, header, lote); err != nil {
				return err
			}
			total += len(lote)
			lote = lote[:0]
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	fmt.Printf("✓ Importados %d registros no total\n", total)
	return nil
}

func insereLote(tx *sql.Tx, tabela string, header []string, lote [][]string) error {
	if len(lote) == 0 {
		return nil
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES ", tabela, strings.Join(header, ", "))

	var valores []interface{}
	for i, linha := range lote {
		if i > 0 {
			query += ", "
		}
		query += "("
		for j, valor := range linha {
			if j > 0 {
				query += ", "
			}
			query += fmt.Sprintf("$%d", len(valores)+1)
			valor = strings.TrimSpace(valor)
			if valor == "" {
				valores = append(valores, nil)
			} else {
				valores = append(valores, valor)
			}
		}
		query += ")"
	}

	_, err := tx.Exec(query, valores...)
	return err
}
