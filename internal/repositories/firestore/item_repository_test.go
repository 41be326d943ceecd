package firestore

import (
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/maplemarket/api/internal/domain"
	pfirestore "github.com/maplemarket/api/internal/platform/firestore"
)

func listingCatalogItem(id string, name string, status domain.SellStatus) domain.CatalogItem {
	return domain.CatalogItem{
		ID:         id,
		Name:       name,
		Price:      1000,
		SellStatus: status,
	}
}

func listingImages(urls map[string]string) func(itemID string) (domain.ItemImage, error) {
	return func(itemID string) (domain.ItemImage, error) {
		url, ok := urls[itemID]
		if !ok {
			return domain.ItemImage{}, pfirestore.WrapError("itemImages.get", status.Errorf(codes.NotFound, "representative image for item %s not found", itemID))
		}
		return domain.ItemImage{ID: "img_" + itemID, ItemID: itemID, URL: url, Representative: true}, nil
	}
}

func TestMainListingPageExcludesItemsWithoutRepresentativeImage(t *testing.T) {
	items := []domain.CatalogItem{
		listingCatalogItem("itm_1", "Maple Syrup", domain.SellStatusOnSale),
		listingCatalogItem("itm_2", "Maple Candle", domain.SellStatusSoldOut),
		listingCatalogItem("itm_3", "Maple Butter", domain.SellStatusOnSale),
	}
	repImage := listingImages(map[string]string{
		"itm_1": "https://img.example.com/1.png",
		"itm_2": "https://img.example.com/2.png",
	})

	page, err := mainListingPage(items, "", domain.PageRequest{Page: 0, PageSize: 10}, repImage)
	if err != nil {
		t.Fatalf("mainListingPage returned error: %v", err)
	}
	if page.TotalCount != 2 {
		t.Fatalf("total count = %d, want 2 (imageless item must not be counted)", page.TotalCount)
	}
	if len(page.Items) != 2 {
		t.Fatalf("item count = %d, want 2", len(page.Items))
	}
	if page.Items[0].ItemID != "itm_2" || page.Items[1].ItemID != "itm_1" {
		t.Fatalf("listing order = %s, %s, want itm_2 then itm_1", page.Items[0].ItemID, page.Items[1].ItemID)
	}
	if page.Items[0].ImageURL != "https://img.example.com/2.png" {
		t.Fatalf("image URL = %q, want the representative URL", page.Items[0].ImageURL)
	}
}

func TestMainListingPageKeepsSoldOutItems(t *testing.T) {
	items := []domain.CatalogItem{
		listingCatalogItem("itm_1", "Maple Syrup", domain.SellStatusSoldOut),
	}
	repImage := listingImages(map[string]string{"itm_1": "https://img.example.com/1.png"})

	page, err := mainListingPage(items, "", domain.PageRequest{Page: 0, PageSize: 10}, repImage)
	if err != nil {
		t.Fatalf("mainListingPage returned error: %v", err)
	}
	if len(page.Items) != 1 || page.TotalCount != 1 {
		t.Fatalf("page = %d items total %d, want the sold-out item listed", len(page.Items), page.TotalCount)
	}
}

func TestMainListingPageFiltersByNameAndPaginates(t *testing.T) {
	items := []domain.CatalogItem{
		listingCatalogItem("itm_1", "Maple Syrup", domain.SellStatusOnSale),
		listingCatalogItem("itm_2", "Maple Candle", domain.SellStatusOnSale),
		listingCatalogItem("itm_3", "Plain Candle", domain.SellStatusOnSale),
	}
	repImage := listingImages(map[string]string{
		"itm_1": "https://img.example.com/1.png",
		"itm_2": "https://img.example.com/2.png",
		"itm_3": "https://img.example.com/3.png",
	})

	page, err := mainListingPage(items, "Candle", domain.PageRequest{Page: 0, PageSize: 1}, repImage)
	if err != nil {
		t.Fatalf("mainListingPage returned error: %v", err)
	}
	if page.TotalCount != 2 {
		t.Fatalf("total count = %d, want 2", page.TotalCount)
	}
	if len(page.Items) != 1 || page.Items[0].ItemID != "itm_3" {
		t.Fatalf("first page = %+v, want only itm_3", page.Items)
	}

	second, err := mainListingPage(items, "Candle", domain.PageRequest{Page: 1, PageSize: 1}, repImage)
	if err != nil {
		t.Fatalf("mainListingPage returned error: %v", err)
	}
	if len(second.Items) != 1 || second.Items[0].ItemID != "itm_2" {
		t.Fatalf("second page = %+v, want only itm_2", second.Items)
	}
}
