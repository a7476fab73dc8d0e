package extraction

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ExtractAmount", func() {
	var (
		text   string
		amount string
		found  bool
	)

	JustBeforeEach(func() {
		value, ok := ExtractAmount(Normalize(text))
		found = ok
		amount = value.StringFixed(2)
	})

	When("a total keyword competes with a subtotal", func() {
		BeforeEach(func() {
			text = "subtotal R$ 10,00\nitens diversos da loja de bairro\ntotal a pagar R$ 45,90"
		})

		It("picks the total", func() {
			Expect(found).To(BeTrue())
			Expect(amount).To(Equal("45.90"))
		})
	})

	When("there are no keywords", func() {
		BeforeEach(func() {
			text = "12,00 e 34,00"
		})

		It("picks the largest value", func() {
			Expect(found).To(BeTrue())
			Expect(amount).To(Equal("34.00"))
		})
	})

	When("a keyword is near a smaller value", func() {
		BeforeEach(func() {
			text = "Cafe expresso 99,00\nobrigado pela preferencia volte sempre amigo\nValor total: 18,50"
		})

		It("prefers the keyword over the magnitude prior", func() {
			Expect(amount).To(Equal("18.50"))
		})
	})

	When("no amount is present", func() {
		BeforeEach(func() {
			text = "OBRIGADO PELA PREFERENCIA\nvolte sempre 2024"
		})

		It("reports the amount as absent", func() {
			Expect(found).To(BeFalse())
		})
	})

	When("the input is whitespace", func() {
		BeforeEach(func() {
			text = "   \n\t "
		})

		It("reports the amount as absent", func() {
			Expect(found).To(BeFalse())
		})
	})

	When("the amount uses thousands separators", func() {
		BeforeEach(func() {
			text = "TOTAL R$ 1.234,56"
		})

		It("strips the grouping", func() {
			Expect(amount).To(Equal("1234.56"))
		})
	})

	When("the amount uses a space as thousands separator", func() {
		BeforeEach(func() {
			text = "TOTAL R$ 2 500,00"
		})

		It("strips the grouping", func() {
			Expect(amount).To(Equal("2500.00"))
		})
	})

	When("the amount uses a decimal point", func() {
		BeforeEach(func() {
			text = "Amount due 19.99"
		})

		It("reads the cents verbatim", func() {
			Expect(amount).To(Equal("19.99"))
		})
	})

	When("OCR misread the marker and a digit", func() {
		BeforeEach(func() {
			text = "TOTAL RS 4S,90"
		})

		It("recovers the amount", func() {
			Expect(amount).To(Equal("45.90"))
		})
	})

	When("OCR spaced out the decimal mark", func() {
		BeforeEach(func() {
			text = "TOTAL R5 45 , 90"
		})

		It("recovers the amount", func() {
			Expect(amount).To(Equal("45.90"))
		})
	})

	When("a date uses dots", func() {
		BeforeEach(func() {
			text = "Emitido em 05.03.2024"
		})

		It("does not mistake it for an amount", func() {
			Expect(found).To(BeFalse())
		})
	})
})

var _ = Describe("Candidates", func() {
	var (
		text   string
		ranked []Candidate
	)

	JustBeforeEach(func() {
		ranked = Candidates(text)
	})

	When("scores tie", func() {
		BeforeEach(func() {
			text = "10,00 aqui 10,00"
		})

		It("ranks the later occurrence first", func() {
			Expect(ranked).To(HaveLen(2))
			Expect(ranked[0].Score).To(Equal(ranked[1].Score))
			Expect(ranked[0].Position).To(Equal(11))
			Expect(ranked[1].Position).To(Equal(0))
		})

		It("gives the magnitude bonus to every tied maximum", func() {
			Expect(ranked[0].Score).To(Equal(1))
			Expect(ranked[1].Score).To(Equal(1))
		})
	})

	When("the marker precedes the number", func() {
		BeforeEach(func() {
			text = "R$ 5,00 e 7,00"
		})

		It("adds the marker bonus", func() {
			Expect(ranked).To(HaveLen(2))
			Expect(ranked[0].Text).To(Equal("5.00"))
			Expect(ranked[0].Score).To(Equal(2))
			Expect(ranked[1].Text).To(Equal("7.00"))
			Expect(ranked[1].Score).To(Equal(1))
		})
	})

	When("the marker is separated by punctuation", func() {
		BeforeEach(func() {
			text = "R$:5,00"
		})

		It("still counts within three characters", func() {
			Expect(ranked).To(HaveLen(1))
			Expect(ranked[0].Score).To(Equal(3))
		})
	})

	When("the text has accented characters", func() {
		BeforeEach(func() {
			text = "Pão de açúcar 3,50"
		})

		It("reports positions in characters", func() {
			Expect(ranked).To(HaveLen(1))
			Expect(ranked[0].Position).To(Equal(14))
		})
	})

	When("the keyword is farther than the context window", func() {
		BeforeEach(func() {
			text = "total" + "                                                  " + "8,00"
		})

		It("does not add the keyword bonus", func() {
			Expect(ranked).To(HaveLen(1))
			Expect(ranked[0].Score).To(Equal(1))
		})
	})

	When("there are no numbers", func() {
		BeforeEach(func() {
			text = "nada aqui"
		})

		It("returns no candidates", func() {
			Expect(ranked).To(BeEmpty())
		})
	})
})
