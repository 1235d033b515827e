package shipping

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mosewear/mose-webshop-sub004/internal/models"
)

func testClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		publicKey:  "pub",
		secretKey:  "sec",
		methodID:   8,
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestCreateReturnParcelKeertAfzenderEnOntvangerOm(t *testing.T) {
	var captured map[string]json.RawMessage

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v2/parcels", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "pub", user)
		assert.Equal(t, "sec", pass)

		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, &captured))

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"parcel":{"id":12345,"tracking_number":"3SMOSE123456","tracking_url":"https://track.example/3SMOSE123456","label":{"label_printer":"https://panel.sendcloud.sc/api/v2/labels/12345"}}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	parcel, err := c.CreateReturnParcel(context.Background(), CreateParcelRequest{
		ReturnID: "abc-123",
		Sender: models.Address{ // de klant
			Name: "Jan Jansen", Street: "Dorpsstraat", HouseNumber: "1",
			PostalCode: "1234 AB", City: "Utrecht", Country: "NL",
			Email: "jan@example.com",
		},
		Recipient: models.Address{ // het magazijn
			Name: "MOSE Wear B.V.", CompanyName: "MOSE Wear B.V.",
			Street: "Industrieweg", HouseNumber: "14",
			PostalCode: "1043 AH", City: "Amsterdam", Country: "NL",
		},
		WeightKg:      0.9,
		DeclaredValue: 59.90,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(12345), parcel.ID)
	assert.Equal(t, "3SMOSE123456", parcel.TrackingCode)
	assert.Equal(t, "https://panel.sendcloud.sc/api/v2/labels/12345", parcel.LabelURL)

	var body struct {
		Name        string `json:"name"`
		City        string `json:"city"`
		FromName    string `json:"from_name"`
		FromCity    string `json:"from_city"`
		OrderNumber string `json:"order_number"`
		Weight      string `json:"weight"`
		IsReturn    bool   `json:"is_return"`
		Request     bool   `json:"request_label"`
		Shipment    *struct {
			ID int `json:"id"`
		} `json:"shipment"`
	}
	require.NoError(t, json.Unmarshal(captured["parcel"], &body))

	// De omkering: kale velden = ontvanger (magazijn), from_* = afzender (klant).
	assert.Equal(t, "MOSE Wear B.V.", body.Name)
	assert.Equal(t, "Amsterdam", body.City)
	assert.Equal(t, "Jan Jansen", body.FromName)
	assert.Equal(t, "Utrecht", body.FromCity)

	assert.Equal(t, "RETOUR-abc-123", body.OrderNumber)
	assert.Equal(t, "0.9", body.Weight)
	assert.True(t, body.IsReturn)
	assert.True(t, body.Request)
	require.NotNil(t, body.Shipment)
	assert.Equal(t, 8, body.Shipment.ID)
}

func TestCreateReturnParcelProviderFout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"postal_code invalid"}}`))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	_, err := c.CreateReturnParcel(context.Background(), CreateParcelRequest{ReturnID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "postal_code invalid")
}

func TestDownloadLabel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, _, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "pub", user)
		w.Write([]byte("%PDF-1.4 label"))
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	data, err := c.DownloadLabel(context.Background(), srv.URL+"/labels/1")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 label"), data)
}

func TestDefaultShippingMethodGebruiktConfiguratie(t *testing.T) {
	c := testClient("http://onbereikbaar.invalid")
	id, err := c.DefaultShippingMethod(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, id)
}
