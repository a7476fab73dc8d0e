package transaction

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("error mapping", func() {
	DescribeTable("UserMessage and StatusCode",
		func(err error, message string, status int) {
			Expect(UserMessage(err)).To(Equal(message))
			Expect(StatusCode(err)).To(Equal(status))
		},
		Entry("not found", fmt.Errorf("getting transaction: %w", ErrNotFound), "Recurso não encontrado", http.StatusNotFound),
		Entry("invalid file", fmt.Errorf("%w: %q", ErrInvalidFile, "../x"), "Dados inválidos. Verifique as informações", http.StatusBadRequest),
		Entry("unauthorized", ErrUnauthorized, "Acesso não autorizado", http.StatusUnauthorized),
		Entry("timeout", fmt.Errorf("scan: %w", context.DeadlineExceeded), "A operação demorou muito. Tente novamente", http.StatusGatewayTimeout),
		Entry("validation", ValidationErrors{
			{Field: "amount", Message: "Valor é obrigatório"},
			{Field: "date", Message: "Data é obrigatória"},
		}, "Valor é obrigatório. Data é obrigatória", http.StatusBadRequest),
		Entry("anything else", errors.New("pq: connection refused on 10.0.0.3"), "Ocorreu um erro inesperado. Tente novamente", http.StatusInternalServerError),
	)

	It("should never leak raw error text", func() {
		err := errors.New("secret table users")
		Expect(UserMessage(err)).NotTo(ContainSubstring("secret"))
	})

	It("should describe every field in Error", func() {
		err := ValidationErrors{{Field: "type", Message: "x"}, {Field: "amount", Message: "y"}}
		Expect(err.Error()).To(Equal("validation failed: type: x; amount: y"))
	})
})
