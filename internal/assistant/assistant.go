package assistant

import (
	"context"
	"strings"
	"time"
)

const (
	AuthorAssistant = "ia"
	AuthorUser      = "user"
)

type Reply struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

// Service отвечает заготовленными репликами. Никакого вывода моделей
// здесь нет и не будет: ассистент работает по сценарию.
type Service struct {
	delay time.Duration
}

// NewService создает сценарного ассистента с фиксированной задержкой ответа.
func NewService(delay time.Duration) *Service {
	return &Service{delay: delay}
}

// Greeting возвращает приветственное сообщение ассистента.
func (s *Service) Greeting() Reply {
	return Reply{
		Author: AuthorAssistant,
		Text:   "Olá! Eu sou a Aura Analytics IA. Estou analisando seu dashboard neste momento. Como posso te ajudar a melhorar suas conversões de vendas e lucros?",
	}
}

// Respond выдерживает задержку и возвращает заготовленный ответ,
// подобранный по ключевым словам вопроса.
func (s *Service) Respond(ctx context.Context, message string) (Reply, error) {
	if err := s.wait(ctx); err != nil {
		return Reply{}, err
	}

	return Reply{Author: AuthorAssistant, Text: cannedReply(message)}, nil
}

func (s *Service) wait(ctx context.Context) error {
	if s.delay <= 0 {
		return nil
	}

	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func cannedReply(message string) string {
	lowered := strings.ToLower(message)

	switch {
	case strings.Contains(lowered, "taxa") || strings.Contains(lowered, "fee"):
		return "Revise suas taxas per-sale: gateways acima de 5% costumam corroer o lucro líquido em produtos de ticket baixo."
	case strings.Contains(lowered, "chargeback"):
		return "Chargebacks acima de 1% indicam problema de expectativa do cliente. Vale revisar a página de vendas e o prazo de entrega."
	case strings.Contains(lowered, "pendente") || strings.Contains(lowered, "pending"):
		return "Investimentos pendentes sem retorno por mais de 48h merecem atenção: pause o criativo e redistribua o orçamento."
	default:
		return "Analisando seus dados: Notei uma queda de 2% no seu ROI na última terça-feira. Uma dica seria pausar os anúncios com CTR menor que 1.5%!"
	}
}
