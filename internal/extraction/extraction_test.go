package extraction

import (
	"strings"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Extract", func() {
	var (
		raw    string
		result Result
	)

	JustBeforeEach(func() {
		result = Extract(raw)
	})

	When("the receipt is noisy but complete", func() {
		BeforeEach(func() {
			raw = "MERCADO CENTRAL\nData 01-12-2023\nSubtotal R5 20,00\nTOTAL R$ 45,90"
		})

		It("finds the total", func() {
			Expect(result.Amount).NotTo(BeNil())
			Expect(result.Amount.StringFixed(2)).To(Equal("45.90"))
		})

		It("finds the date", func() {
			Expect(result.Date).NotTo(BeNil())
			Expect(*result.Date).To(Equal(time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC)))
		})

		It("finds the description", func() {
			Expect(result.Description).NotTo(BeNil())
			Expect(*result.Description).To(Equal("MERCADO CENTRAL"))
		})

		It("is not empty", func() {
			Expect(result.Empty()).To(BeFalse())
		})
	})

	When("the input is empty", func() {
		BeforeEach(func() {
			raw = ""
		})

		It("leaves every field absent", func() {
			Expect(result.Amount).To(BeNil())
			Expect(result.Date).To(BeNil())
			Expect(result.Description).To(BeNil())
			Expect(result.Empty()).To(BeTrue())
		})
	})

	When("the input is whitespace only", func() {
		BeforeEach(func() {
			raw = " \n\t\n  "
		})

		It("leaves every field absent", func() {
			Expect(result.Empty()).To(BeTrue())
		})
	})

	When("only a description can be found", func() {
		BeforeEach(func() {
			raw = "Recibo de doacao\nobrigado"
		})

		It("fills the description alone", func() {
			Expect(result.Amount).To(BeNil())
			Expect(result.Date).To(BeNil())
			Expect(*result.Description).To(Equal("Recibo de doacao"))
		})
	})

	It("is safe to call concurrently", func() {
		inputs := []string{
			"MERCADO CENTRAL\nTOTAL R$ 45,90",
			"Farmacia\nData 05/03/2024\nA PAGAR 12,30",
			strings.Repeat("Posto de gasolina 150,00\n", 20),
		}
		want := make([]Result, len(inputs))
		for i, in := range inputs {
			want[i] = Extract(in)
		}

		var wg sync.WaitGroup
		got := make([][]Result, 8)
		for w := range got {
			wg.Add(1)
			go func(w int) {
				defer wg.Done()
				for _, in := range inputs {
					got[w] = append(got[w], Extract(in))
				}
			}(w)
		}
		wg.Wait()

		for _, results := range got {
			for i, r := range results {
				Expect(r.Amount.Equal(*want[i].Amount)).To(BeTrue())
			}
		}
	})
})
