package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
	config "github.com/ushan-Gimhan/SWAPSPOT-BE/configs"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/database"
	"github.com/ushan-Gimhan/SWAPSPOT-BE/models"
)

// GenerateActivityReport renders the user's marketplace activity (active
// listings, conversation count) to PDF and uploads it, returning the URL.
func GenerateActivityReport(userID uuid.UUID) (string, error) {
	var user models.User
	if err := database.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		return "", fmt.Errorf("user lookup failed: %w", err)
	}

	var items []models.Item
	if err := database.DB.
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return "", fmt.Errorf("item lookup failed: %w", err)
	}

	var conversationCount int64
	if err := database.DB.Model(&models.Conversation{}).
		Where("user_one_id = ? OR user_two_id = ?", userID, userID).
		Count(&conversationCount).Error; err != nil {
		return "", fmt.Errorf("conversation count failed: %w", err)
	}

	htmlData, err := renderReportHTML(&user, items, conversationCount)
	if err != nil {
		return "", fmt.Errorf("failed to render report HTML: %w", err)
	}

	pdfBytes, err := generatePDFFromHTML(htmlData)
	if err != nil {
		return "", fmt.Errorf("failed to print report PDF: %w", err)
	}

	return uploadReportPDF(pdfBytes, userID.String())
}

func renderReportHTML(user *models.User, items []models.Item, conversationCount int64) (string, error) {
	tmpl, err := template.ParseFiles("templates/report.html")
	if err != nil {
		return "", err
	}

	data := struct {
		FullName          string
		Email             string
		GeneratedAt       string
		Items             []models.Item
		ConversationCount int64
	}{
		FullName:          user.FullName,
		Email:             user.Email,
		GeneratedAt:       time.Now().Format("January 2, 2006"),
		Items:             items,
		ConversationCount: conversationCount,
	}

	var renderedHTML bytes.Buffer
	if err := tmpl.Execute(&renderedHTML, data); err != nil {
		return "", err
	}
	return renderedHTML.String(), nil
}

func generatePDFFromHTML(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

func uploadReportPDF(fileBytes []byte, userID string) (string, error) {
	cld, err := cloudinary.NewFromURL(config.Config("CLOUDINARY_URL"))
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	uploadParams := uploader.UploadParams{
		PublicID:     fmt.Sprintf("reports/%s_%s", userID, uuid.New().String()),
		Folder:       "swapspot_reports",
		ResourceType: "raw",
	}

	uploadResult, err := cld.Upload.Upload(ctx, bytes.NewReader(fileBytes), uploadParams)
	if err != nil {
		return "", err
	}

	return uploadResult.SecureURL, nil
}
