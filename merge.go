package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// juntaDataFrames faz o inner join das duas fontes por Year, descarta as
// colunas zeradas e acrescenta a coluna constante pred_place_holder. Anos
// presentes em só uma das fontes ficam de fora do resultado.
func juntaDataFrames(dfIne, dfUe dataframe.DataFrame) (dataframe.DataFrame, error) {
	merged := dfIne.InnerJoin(dfUe, "Year")
	if merged.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("erro no merge por Year: %w", merged.Error())
	}

	merged = descartaColunasZeradas(merged)

	uns := make([]int, merged.Nrow())
	for i := range uns {
		uns[i] = 1
	}
	merged = merged.Mutate(series.New(uns, series.Int, "pred_place_holder"))
	if merged.Error() != nil {
		return dataframe.DataFrame{}, fmt.Errorf("erro ao acrescentar pred_place_holder: %w", merged.Error())
	}
	return merged, nil
}

// descartaColunasZeradas remove toda coluna (menos Year) cujo valor é zero
// em todas as linhas. Células não numéricas contam como não-zero.
func descartaColunasZeradas(df dataframe.DataFrame) dataframe.DataFrame {
	if df.Nrow() == 0 {
		return df
	}
	var zeradas []string
	for _, nome := range df.Names() {
		if nome == "Year" {
			continue
		}
		todosZero := true
		for _, valor := range df.Col(nome).Records() {
			v, err := strconv.ParseFloat(strings.TrimSpace(valor), 64)
			if err != nil || v != 0 {
				todosZero = false
				break
			}
		}
		if todosZero {
			zeradas = append(zeradas, nome)
		}
	}
	if len(zeradas) > 0 {
		df = df.Drop(zeradas)
	}
	return df
}
