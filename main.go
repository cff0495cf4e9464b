package main

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/joho/godotenv"
)

const timeoutHTTP = 30 * time.Second

func main() {
	// .env é opcional: sem ele valem só as constantes de compilação
	godotenv.Load(".env")

	for {
		fmt.Println("Selecione uma opção:")
		fmt.Println("1 - Executar pipeline completo (CSV + Power BI)")
		fmt.Println("2 - Gerar apenas o CSV do entregável")
		fmt.Println("3 - Carregar um CSV do entregável no banco de dados")
		fmt.Println("0 - Sair")
		fmt.Print("Digite 1, 2, 3 ou 0: ")

		var escolha int
		if _, err := fmt.Scan(&escolha); err != nil {
			fmt.Println("Erro ao ler opção:", err)
			return
		}

		switch escolha {
		case 1:
			urlPowerBI := os.Getenv("POWERBI_URL")
			if urlPowerBI == "" {
				fmt.Println("POWERBI_URL não definido no .env; o envio ao Power BI será pulado.")
			}
			if err := executaPipeline(context.Background(), urlINE, urlBaseEurostat, codigoEurostat, urlPowerBI, "."); err != nil {
				fmt.Println("Erro no pipeline:", err)
			}
		case 2:
			if err := executaPipeline(context.Background(), urlINE, urlBaseEurostat, codigoEurostat, "", "."); err != nil {
				fmt.Println("Erro no pipeline:", err)
			}
		case 3:
			fmt.Print("Digite o nome do arquivo CSV do entregável: ")
			var arquivo string
			if _, err := fmt.Scan(&arquivo); err != nil {
				fmt.Println("Erro ao ler nome do arquivo:", err)
				continue
			}
			if err := carregaEntregable("datos_entregable", arquivo); err != nil {
				fmt.Println("Erro ao carregar entregável no banco:", err)
			}
		case 0:
			fmt.Println("Saindo...")
			return
		default:
			fmt.Println("Opção inválida.")
		}
		fmt.Println()
	}
}

// executaPipeline roda o fluxo completo: busca INE e Eurostat em paralelo,
// normaliza as duas fontes, junta por ano, gera o CSV em dir e, se
// urlPowerBI não for vazio, publica os registros no Power BI.
func executaPipeline(ctx context.Context, urlIne, baseEurostat, codigo, urlPowerBI, dir string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg            sync.WaitGroup
		dfIne, dfUe   dataframe.DataFrame
		errIne, errUe error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		ctxIne, cancelIne := context.WithTimeout(ctx, timeoutHTTP)
		defer cancelIne()
		datos, err := buscaDadosINE(ctxIne, urlIne)
		if err != nil {
			errIne = err
			cancel() // aborta a busca irmã
			return
		}
		dfIne = normalizaINE(datos)
	}()
	go func() {
		defer wg.Done()
		ctxUe, cancelUe := context.WithTimeout(ctx, timeoutHTTP)
		defer cancelUe()
		matriz, err := buscaDadosEurostat(ctxUe, baseEurostat, codigo)
		if err != nil {
			errUe = err
			cancel()
			return
		}
		dfUe, errUe = normalizaEurostat(matriz)
		if errUe != nil {
			cancel()
		}
	}()
	wg.Wait()

	if errIne != nil {
		return errIne
	}
	if errUe != nil {
		return errUe
	}

	merged, err := juntaDataFrames(dfIne, dfUe)
	if err != nil {
		return err
	}
	if merged.Nrow() == 0 {
		fmt.Println("Nenhum ano em comum entre INE e Eurostat; nada a gerar.")
		return nil
	}

	if _, err := geraCSVEntregable(merged, dir, time.Now()); err != nil {
		return err
	}

	if urlPowerBI != "" {
		ctxPost, cancelPost := context.WithTimeout(context.Background(), timeoutHTTP)
		defer cancelPost()
		if err := enviaPowerBI(ctxPost, urlPowerBI, registrosInteiros(merged)); err != nil {
			// só observa o resultado do envio, como no entregável original
			fmt.Println(err)
		}
	}
	return nil
}
