package csvproc

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshdias/zaprouter/pkg/tool"
	"github.com/joshdias/zaprouter/pkg/zapi"
)

const sampleCSV = "Lista de Imóveis da Caixa\n" +
	"Data de geração: 01/06/2026\n" +
	"\n" +
	"Número;UF;Cidade;Bairro;Endereço;Preço;Valor de avaliação;Desconto;Descrição;Modalidade de venda;Link de acesso\n" +
	"1444;PR;MARINGA;ZONA 07;RUA A, 100;150000,00;200000,00;25%;Casa com 2 quartos;Leilão SFI;https://example.com/1444\n" +
	"1445;PR;MARINGA;CENTRO;RUA B, 200;300000,00;300000,00;0%;Apartamento novo;Venda Online;https://example.com/1445\n" +
	"1446;SP;CAMPINAS;GUANABARA;RUA C, 300;250000,00;280000,00;10%;Casa geminada;Licitação Aberta;https://example.com/1446\n" +
	"\n" +
	"1447;PR;MARINGA;JD ALVORADA;RUA D, 400;180000,00;220000,00;18%;Casa térrea;Licitação Aberta;https://example.com/1447\n"

type fakeGateway struct {
	mu       sync.Mutex
	messages []sentMessage
}

type sentMessage struct {
	phone   string
	message string
	opts    zapi.SendOptions
}

func (g *fakeGateway) SendMessage(_ context.Context, phone, message string, opts zapi.SendOptions) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.messages = append(g.messages, sentMessage{phone: phone, message: message, opts: opts})
	return true
}

func (g *fakeGateway) sent() []sentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]sentMessage(nil), g.messages...)
}

func TestParse(t *testing.T) {
	t.Run("skips preamble and blank lines", func(t *testing.T) {
		listings := Parse(sampleCSV)
		require.Len(t, listings, 4)
		assert.Equal(t, "1444", listings[0].Number)
		assert.Equal(t, "1447", listings[3].Number)
	})

	t.Run("maps positional columns", func(t *testing.T) {
		listings := Parse(sampleCSV)
		require.NotEmpty(t, listings)

		first := listings[0]
		assert.Equal(t, "PR", first.State)
		assert.Equal(t, "MARINGA", first.City)
		assert.Equal(t, "ZONA 07", first.District)
		assert.Equal(t, "RUA A, 100", first.Address)
		assert.Equal(t, "150000,00", first.Price)
		assert.Equal(t, "200000,00", first.AppraisalValue)
		assert.Equal(t, "25%", first.Discount)
		assert.Equal(t, "Casa com 2 quartos", first.Description)
		assert.Equal(t, "Leilão SFI", first.SaleMode)
		assert.Equal(t, "https://example.com/1444", first.AccessLink)
	})

	t.Run("skips rows with insufficient columns", func(t *testing.T) {
		content := "title\nsubtitle\n\nheader\nnot-a-row\n10;PR;MARINGA\n"
		listings := Parse(content)
		require.Len(t, listings, 1)
		assert.Equal(t, "10", listings[0].Number)
	})

	t.Run("tolerates short rows", func(t *testing.T) {
		content := "t\ns\n\nh\n99;SP\n"
		listings := Parse(content)
		require.Len(t, listings, 1)
		assert.Equal(t, "99", listings[0].Number)
		assert.Empty(t, listings[0].City)
		assert.Empty(t, listings[0].AccessLink)
	})

	t.Run("empty document yields no listings", func(t *testing.T) {
		assert.Empty(t, Parse(""))
	})
}

func TestApplyFilter(t *testing.T) {
	listings := Parse(sampleCSV)

	t.Run("default filter keeps Maringá auction houses", func(t *testing.T) {
		filtered := ApplyFilter(listings, DefaultFilter())
		require.Len(t, filtered, 2)
		assert.Equal(t, "1444", filtered[0].Number)
		assert.Equal(t, "1447", filtered[1].Number)
	})

	t.Run("city must match exactly", func(t *testing.T) {
		filtered := ApplyFilter(listings, Filter{City: "CAMPINAS"})
		require.Len(t, filtered, 1)
		assert.Equal(t, "1446", filtered[0].Number)
	})

	t.Run("description is a substring match", func(t *testing.T) {
		filtered := ApplyFilter(listings, Filter{DescriptionContains: "Apartamento"})
		require.Len(t, filtered, 1)
		assert.Equal(t, "1445", filtered[0].Number)
	})

	t.Run("any sale mode substring matches", func(t *testing.T) {
		filtered := ApplyFilter(listings, Filter{SaleModes: []string{"Leilão", "Licitação"}})
		assert.Len(t, filtered, 3)
	})

	t.Run("empty filter keeps everything", func(t *testing.T) {
		assert.Len(t, ApplyFilter(listings, Filter{}), len(listings))
	})
}

func TestFormatListings(t *testing.T) {
	t.Run("no matches", func(t *testing.T) {
		message := formatListings(nil)
		assert.Equal(t, "Nenhum imóvel encontrado com os critérios especificados.", message)
	})

	t.Run("renders listing fields", func(t *testing.T) {
		message := formatListings([]Listing{{
			Number:      "1444",
			City:        "MARINGA",
			District:    "ZONA 07",
			Price:       "150000,00",
			Description: "Casa com 2 quartos",
		}})

		assert.True(t, strings.HasPrefix(message, "*Imóveis encontrados:*"))
		assert.Contains(t, message, "*Número do Imóvel:* 1444")
		assert.Contains(t, message, "*Cidade:* MARINGA")
		assert.Contains(t, message, "*Preço:* 150000,00")
		assert.Contains(t, message, "----------------------------")
	})
}

func TestServiceProcess(t *testing.T) {
	newService := func(gateway Gateway) *Service {
		svc := NewService(gateway, ServiceOptions{Workers: 1, QueueSize: 10})
		t.Cleanup(func() { svc.Close(0) })
		return svc
	}

	t.Run("downloads, filters, and notifies", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(sampleCSV))
		}))
		defer server.Close()

		gateway := &fakeGateway{}
		svc := newService(gateway)

		result := svc.Process(Request{PhoneNumber: "5544999990000", DocumentURL: server.URL})
		require.True(t, result.Success)
		assert.Len(t, result.Listings, 2)

		sent := gateway.sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "5544999990000", sent[0].phone)
		assert.Contains(t, sent[0].message, "*Imóveis encontrados:*")
		assert.Contains(t, sent[0].message, "1444")
	})

	t.Run("empty result still notifies", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("t\ns\n\nh\n1;SP;CAMPINAS;B;A;1;1;0;Apto;Venda;link\n"))
		}))
		defer server.Close()

		gateway := &fakeGateway{}
		svc := newService(gateway)

		result := svc.Process(Request{PhoneNumber: "5544999990000", DocumentURL: server.URL})
		require.True(t, result.Success)
		assert.Empty(t, result.Listings)

		sent := gateway.sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "Nenhum imóvel encontrado com os critérios especificados.", sent[0].message)
	})

	t.Run("download failure reports error to sender", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		gateway := &fakeGateway{}
		svc := newService(gateway)

		result := svc.Process(Request{PhoneNumber: "5544999990000", DocumentURL: server.URL, MessageID: "msg-1"})
		require.False(t, result.Success)
		assert.Contains(t, result.ErrorMessage, "Error processing CSV")

		sent := gateway.sent()
		require.Len(t, sent, 1)
		assert.True(t, strings.HasPrefix(sent[0].message, "*Error:*"))
		assert.Equal(t, "msg-1", sent[0].opts.ReferenceID)
	})
}

func toolRequest(params map[string]interface{}) tool.Request {
	return tool.Request{ToolName: ToolName, Parameters: params}
}

func TestToolValidateParameters(t *testing.T) {
	tl := NewTool(nil)

	cases := []struct {
		name   string
		params map[string]interface{}
		want   string
	}{
		{"nil parameters", nil, "Parameters are required"},
		{"missing phone", map[string]interface{}{"contentUrl": "https://x"}, "Phone number is required"},
		{"missing url", map[string]interface{}{"phoneNumber": "554499"}, "Content URL is required"},
		{"missing content type", map[string]interface{}{"phoneNumber": "554499", "contentUrl": "https://x"}, "Content type is required"},
		{"wrong content type", map[string]interface{}{"phoneNumber": "554499", "contentUrl": "https://x", "contentType": "audio"}, "Content type must be 'document'"},
		{"non-http url", map[string]interface{}{"phoneNumber": "554499", "contentUrl": "ftp://x", "contentType": "document"}, "Content URL must be a valid HTTP or HTTPS URL"},
		{"valid", map[string]interface{}{"phoneNumber": "554499", "contentUrl": "https://x", "contentType": "document"}, ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tl.ValidateParameters(toolRequest(tc.params)))
		})
	}
}

func TestToolExecute(t *testing.T) {
	gateway := &fakeGateway{}
	svc := NewService(gateway, ServiceOptions{Workers: 1, QueueSize: 10})
	defer svc.Close(0)

	tl := NewTool(svc)
	assert.Equal(t, ToolName, tl.Name())

	resp := tl.Execute(toolRequest(map[string]interface{}{
		"phoneNumber": "5544999990000",
		"contentUrl":  "https://example.com/listings.csv",
		"contentType": "document",
	}))
	assert.Equal(t, tool.StatusAccepted, resp.Status)
	assert.NotEmpty(t, resp.RequestID)
}
