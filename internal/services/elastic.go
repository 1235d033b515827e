package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/mosewear/mose-webshop-sub004/internal/database"
	"github.com/mosewear/mose-webshop-sub004/internal/models"
)

const productIndex = "products"

// IndexProduct indexeert een product in Elasticsearch, zodat de
// back-office-zoekfunctie het kan vinden.
func IndexProduct(p models.Product) {
	if database.Elastic == nil {
		log.Println("⚠️ Elasticsearch niet geïnitialiseerd, indexeren overgeslagen:", p.Name)
		return
	}

	data, _ := json.Marshal(p)
	req := esapi.IndexRequest{
		Index:      productIndex,
		DocumentID: p.ID.String(),
		Body:       bytes.NewReader(data),
		Refresh:    "true",
	}

	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Println("❌ Versturen naar Elasticsearch mislukt:", err)
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		log.Printf("⚠️ Elasticsearch gaf een fout voor %s: %s", p.Name, res.String())
	} else {
		log.Printf("✅ Product geïndexeerd: %s", p.Name)
	}
}

// DeleteProductFromIndex haalt een product uit de index.
func DeleteProductFromIndex(productID string) {
	if database.Elastic == nil {
		return
	}

	req := esapi.DeleteRequest{Index: productIndex, DocumentID: productID}
	res, err := req.Do(context.Background(), database.Elastic)
	if err != nil {
		log.Println("❌ Verwijderen uit Elasticsearch mislukt:", err)
		return
	}
	res.Body.Close()
}

// SearchProducts zoekt producten op naam, beschrijving en categorie.
func SearchProducts(ctx context.Context, query string, limit int) ([]models.Product, error) {
	if database.Elastic == nil {
		return nil, fmt.Errorf("Elasticsearch niet geïnitialiseerd")
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	body := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":     query,
				"fields":    []string{"name^3", "description", "category"},
				"fuzziness": "AUTO",
			},
		},
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	res, err := database.Elastic.Search(
		database.Elastic.Search.WithContext(ctx),
		database.Elastic.Search.WithIndex(productIndex),
		database.Elastic.Search.WithBody(bytes.NewReader(data)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("zoekopdracht mislukt: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	products := make([]models.Product, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		products = append(products, hit.Source)
	}

	return products, nil
}
