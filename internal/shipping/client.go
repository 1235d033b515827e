package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/mosewear/mose-webshop-sub004/internal/models"
)

// LabelClient abstraheert de verzendprovider, zodat de orkestrator
// in tests tegen een fake kan draaien.
type LabelClient interface {
	// CreateReturnParcel koopt een retourlabel. Let op de omkering:
	// de klant is de afzender, het magazijn de ontvanger.
	CreateReturnParcel(ctx context.Context, req CreateParcelRequest) (*Parcel, error)

	// DownloadLabel haalt de label-PDF op (voor archivering in MinIO).
	DownloadLabel(ctx context.Context, labelURL string) ([]byte, error)
}

type ParcelItem struct {
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	WeightKg    float64 `json:"weight"`
	ValueEUR    float64 `json:"value"`
}

type CreateParcelRequest struct {
	ReturnID      string
	Sender        models.Address // de klant
	Recipient     models.Address // het magazijn
	WeightKg      float64
	DeclaredValue float64
	Items         []ParcelItem
}

type Parcel struct {
	ID           int64
	TrackingCode string
	TrackingURL  string
	LabelURL     string
}

// Client praat met de REST-API van de verzendprovider (Sendcloud).
// Er bestaat geen Go-SDK; authenticatie gaat via basic auth met het
// API-sleutelpaar.
type Client struct {
	baseURL    string
	publicKey  string
	secretKey  string
	methodID   int
	httpClient *http.Client
}

func NewClient() *Client {
	methodID, _ := strconv.Atoi(os.Getenv("SENDCLOUD_RETURN_METHOD_ID"))
	baseURL := os.Getenv("SENDCLOUD_BASE_URL")
	if baseURL == "" {
		baseURL = "https://panel.sendcloud.sc"
	}

	return &Client{
		baseURL:    baseURL,
		publicKey:  os.Getenv("SENDCLOUD_PUBLIC_KEY"),
		secretKey:  os.Getenv("SENDCLOUD_SECRET_KEY"),
		methodID:   methodID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// apiParcel is het request/response-formaat van de provider. In het
// parcel-object zijn de kale velden de ontvanger en de from_*-velden de
// afzender; bij een retour vullen we die dus omgekeerd aan een normale
// verzending in.
type apiParcel struct {
	Name            string `json:"name"`
	CompanyName     string `json:"company_name,omitempty"`
	Address         string `json:"address"`
	HouseNumber     string `json:"house_number"`
	City            string `json:"city"`
	PostalCode      string `json:"postal_code"`
	Country         string `json:"country"`
	Telephone       string `json:"telephone,omitempty"`
	Email           string `json:"email,omitempty"`
	FromName        string `json:"from_name"`
	FromCompanyName string `json:"from_company_name,omitempty"`
	FromAddress     string `json:"from_address_1"`
	FromHouseNumber string `json:"from_house_number"`
	FromCity        string `json:"from_city"`
	FromPostalCode  string `json:"from_postal_code"`
	FromCountry     string `json:"from_country"`
	FromEmail       string `json:"from_email,omitempty"`

	OrderNumber   string       `json:"order_number"`
	Weight        string       `json:"weight"`
	TotalValue    float64      `json:"total_order_value,omitempty"`
	IsReturn      bool         `json:"is_return"`
	RequestLabel  bool         `json:"request_label"`
	ParcelItems   []ParcelItem `json:"parcel_items,omitempty"`
	ShipmentModel *struct {
		ID int `json:"id"`
	} `json:"shipment,omitempty"`
}

type apiParcelResponse struct {
	Parcel struct {
		ID             int64  `json:"id"`
		TrackingNumber string `json:"tracking_number"`
		TrackingURL    string `json:"tracking_url"`
		Label          struct {
			LabelPrinter string `json:"label_printer"`
		} `json:"label"`
	} `json:"parcel"`
}

func (c *Client) CreateReturnParcel(ctx context.Context, req CreateParcelRequest) (*Parcel, error) {
	body := apiParcel{
		// Ontvanger: het magazijn.
		Name:        req.Recipient.Name,
		CompanyName: req.Recipient.CompanyName,
		Address:     req.Recipient.Street,
		HouseNumber: req.Recipient.HouseNumber,
		City:        req.Recipient.City,
		PostalCode:  req.Recipient.PostalCode,
		Country:     req.Recipient.Country,
		Telephone:   req.Recipient.Phone,
		Email:       req.Recipient.Email,

		// Afzender: de klant.
		FromName:        req.Sender.Name,
		FromCompanyName: req.Sender.CompanyName,
		FromAddress:     req.Sender.Street,
		FromHouseNumber: req.Sender.HouseNumber,
		FromCity:        req.Sender.City,
		FromPostalCode:  req.Sender.PostalCode,
		FromCountry:     req.Sender.Country,
		FromEmail:       req.Sender.Email,

		OrderNumber:  ReturnOrderNumberPrefix + req.ReturnID,
		Weight:       fmt.Sprintf("%.1f", req.WeightKg),
		TotalValue:   req.DeclaredValue,
		IsReturn:     true,
		RequestLabel: true,
		ParcelItems:  req.Items,
	}
	if c.methodID > 0 {
		body.ShipmentModel = &struct {
			ID int `json:"id"`
		}{ID: c.methodID}
	}

	payload, err := json.Marshal(map[string]apiParcel{"parcel": body})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v2/parcels", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(c.publicKey, c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("verzendprovider onbereikbaar: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("verzendprovider gaf %d: %s", resp.StatusCode, string(raw))
	}

	var out apiParcelResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("antwoord verzendprovider onleesbaar: %w", err)
	}

	log.Printf("📦 Retourlabel aangekocht: parcel %d, tracking %s", out.Parcel.ID, out.Parcel.TrackingNumber)

	return &Parcel{
		ID:           out.Parcel.ID,
		TrackingCode: out.Parcel.TrackingNumber,
		TrackingURL:  out.Parcel.TrackingURL,
		LabelURL:     out.Parcel.Label.LabelPrinter,
	}, nil
}

// DefaultShippingMethod haalt het geconfigureerde retour-verzendmethode-id
// op, of bij gebrek daaraan de eerste retourmethode van de provider.
func (c *Client) DefaultShippingMethod(ctx context.Context) (int, error) {
	if c.methodID > 0 {
		return c.methodID, nil
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v2/shipping_methods?is_return=true", nil)
	if err != nil {
		return 0, err
	}
	httpReq.SetBasicAuth(c.publicKey, c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("verzendprovider gaf %d bij ophalen verzendmethodes", resp.StatusCode)
	}

	var out struct {
		ShippingMethods []struct {
			ID int `json:"id"`
		} `json:"shipping_methods"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	if len(out.ShippingMethods) == 0 {
		return 0, fmt.Errorf("geen retour-verzendmethodes beschikbaar")
	}

	return out.ShippingMethods[0].ID, nil
}

func (c *Client) DownloadLabel(ctx context.Context, labelURL string) ([]byte, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, labelURL, nil)
	if err != nil {
		return nil, err
	}
	httpReq.SetBasicAuth(c.publicKey, c.secretKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("label downloaden gaf %d", resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}
