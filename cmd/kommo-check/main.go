// kommo-check cria um lead de teste no Kommo com as credenciais do ambiente.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/xavierca1/ligue-funnel/internal/infra/integration/kommo"
	"github.com/xavierca1/ligue-funnel/internal/infra/logger"
)

func main() {
	name := flag.String("name", "Joao Teste da Silva", "nome do contato")
	email := flag.String("email", "joao.teste@email.com", "email do contato")
	phone := flag.String("phone", "+556199767638", "telefone do contato")
	origin := flag.String("origin", "page", "origem do lead")
	flag.Parse()

	_ = godotenv.Load()
	log := logger.New(os.Getenv("GO_ENV"))
	defer log.Sync()

	token := os.Getenv("KOMMO_API_TOKEN")
	if token == "" {
		log.Fatal("KOMMO_API_TOKEN deve estar configurado")
	}

	client := kommo.NewClient(token, os.Getenv("KOMMO_BASE_URL"), log)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	leadID, err := client.CreateLead(ctx, kommo.CreateLeadInput{
		Name:       *name,
		Email:      *email,
		Phone:      *phone,
		Origin:     *origin,
		OriginFont: "kommo-check",
		Brand:      "Ligue",
	})
	if err != nil {
		log.Fatal("erro ao criar lead no Kommo", zap.Error(err))
	}

	accountID := os.Getenv("KOMMO_ACCOUNT_ID")
	if accountID == "" {
		accountID = "liguemedicina"
	}
	fmt.Printf("lead #%d criado: https://%s.kommo.com/leads/detail/%d\n", leadID, accountID, leadID)
}
