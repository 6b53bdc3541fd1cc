package sales

import "errors"

// User-facing feedback shown by the presentation adapters.
const (
	MsgAdded           = "Venda adicionada com sucesso!"
	MsgEdited          = "Venda editada com sucesso!"
	MsgRemoved         = "Venda removida com sucesso!"
	MsgConfirmRemoval  = "Tem certeza que deseja remover esta venda?"
	MsgNothingToExport = "Não há vendas para exportar."
	MsgExported        = "Vendas exportadas com sucesso!"
	ShareCaption       = "Aqui estão minhas vendas!"
)

// UserMessage translates a ledger error into the message shown to the user.
// Errors without a dedicated message get a generic one.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingField):
		return "Por favor, preencha todos os campos."
	case errors.Is(err, ErrInvalidPrice):
		return "Preço inválido."
	case errors.Is(err, ErrNegativePrice):
		return "O preço não pode ser negativo."
	case errors.Is(err, ErrNotFound):
		return "Venda não encontrada."
	case errors.Is(err, ErrNoPendingRemoval):
		return "Nenhuma remoção pendente."
	default:
		return "Algo deu errado."
	}
}

// IsValidationError reports whether err is one of the input validation errors.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrMissingField) || errors.Is(err, ErrInvalidPrice) || errors.Is(err, ErrNegativePrice)
}
