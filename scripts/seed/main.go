// Package main implements a standalone seed script that populates a
// running catalog service with test data. Books are created through the
// HTTP API (multipart upload with a generated cover), then rated by a
// handful of synthetic users so the best-rated ranking has something to
// chew on.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log"
	"math/rand"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/Riiturii/oc-monvieuxgrimoire/internal/auth"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type seedBook struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Year   int    `json:"year"`
	Genre  string `json:"genre"`
	Grade  int    `json:"grade"`
}

var books = []seedBook{
	{"Notre-Dame de Paris", "Victor Hugo", 1831, "Gothic fiction", 5},
	{"Les Misérables", "Victor Hugo", 1862, "Historical fiction", 4},
	{"Candide", "Voltaire", 1759, "Satire", 4},
	{"Madame Bovary", "Gustave Flaubert", 1857, "Realism", 3},
	{"Le Comte de Monte-Cristo", "Alexandre Dumas", 1844, "Adventure", 5},
	{"Germinal", "Émile Zola", 1885, "Naturalism", 4},
	{"Le Petit Prince", "Antoine de Saint-Exupéry", 1943, "Fable", 5},
	{"L'Étranger", "Albert Camus", 1942, "Absurdist fiction", 4},
}

func main() {
	baseURL := getEnv("CATALOG_URL", "http://localhost:4000")
	secret := getEnv("JWT_SECRET", "dev-secret-change-me")

	jwtManager := auth.NewJWTManager(secret, time.Hour)

	users := make([]string, 5)
	tokens := make([]string, 5)
	for i := range users {
		users[i] = fmt.Sprintf("seed-user-%d", i+1)
		token, err := jwtManager.GenerateAccessToken(users[i], users[i]+"@example.com")
		if err != nil {
			log.Fatalf("generate token: %v", err)
		}
		tokens[i] = token
	}

	created := make([]string, 0, len(books))
	for i, b := range books {
		owner := i % len(users)
		id, err := createBook(baseURL, tokens[owner], b)
		if err != nil {
			log.Fatalf("create %q: %v", b.Title, err)
		}
		log.Printf("created %q as %s (id=%s)", b.Title, users[owner], id)
		created = append(created, id)

		// Everyone except the owner rates with some probability.
		for u := range users {
			if u == owner || rand.Intn(3) == 0 {
				continue
			}
			grade := rand.Intn(6)
			if err := rateBook(baseURL, tokens[u], id, grade); err != nil {
				log.Fatalf("rate %q by %s: %v", b.Title, users[u], err)
			}
		}
	}

	log.Printf("seeded %d books", len(created))
}

func createBook(baseURL, token string, b seedBook) (string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	bookJSON, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("marshal book: %w", err)
	}
	if err := w.WriteField("book", string(bookJSON)); err != nil {
		return "", fmt.Errorf("write book field: %w", err)
	}

	part, err := w.CreateFormFile("image", "cover.jpg")
	if err != nil {
		return "", fmt.Errorf("create image part: %w", err)
	}
	if err := jpeg.Encode(part, randomCover(), nil); err != nil {
		return "", fmt.Errorf("encode cover: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("close multipart writer: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/books", &buf)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	body, err := doRequest(req)
	if err != nil {
		return "", err
	}

	var result struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	return result.Data.ID, nil
}

func rateBook(baseURL, token, bookID string, grade int) error {
	payload, err := json.Marshal(map[string]int{"grade": grade})
	if err != nil {
		return fmt.Errorf("marshal rating: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+"/api/books/"+bookID+"/rating", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	_, err = doRequest(req)
	return err
}

func doRequest(req *http.Request) ([]byte, error) {
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// randomCover renders a flat-colored placeholder cover.
func randomCover() image.Image {
	img := image.NewRGBA(image.Rect(0, 0, 463, 595))
	c := color.RGBA{
		R: uint8(rand.Intn(200) + 30),
		G: uint8(rand.Intn(200) + 30),
		B: uint8(rand.Intn(200) + 30),
		A: 255,
	}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = c.R
		img.Pix[i+1] = c.G
		img.Pix[i+2] = c.B
		img.Pix[i+3] = c.A
	}
	return img
}
