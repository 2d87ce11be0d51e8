package menuControllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sufra-app/restaurant-api/models"
	"github.com/tealeg/xlsx"
	"gorm.io/gorm"
)

// ImportMenuFromExcel bulk-creates/updates menu items from an uploaded sheet.
// Expected columns: ID, Name, Description, Price, CategoryID, Available, Image.
func ImportMenuFromExcel(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		excelFileHeader, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is required"})
			return
		}

		file, err := excelFileHeader.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open Excel file"})
			return
		}
		defer file.Close()

		xlFile, err := xlsx.OpenReaderAt(file, excelFileHeader.Size)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse Excel file"})
			return
		}

		if len(xlFile.Sheets) == 0 || xlFile.Sheets[0].MaxRow < 2 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Excel file is empty or missing header row"})
			return
		}

		sheet := xlFile.Sheets[0]
		createdCount, updatedCount, skippedCount := 0, 0, 0

		for i := 1; i < sheet.MaxRow; i++ {
			row := sheet.Rows[i]
			if len(row.Cells) < 5 {
				skippedCount++
				continue
			}

			get := func(index int) string {
				if index < len(row.Cells) {
					return strings.TrimSpace(row.Cells[index].String())
				}
				return ""
			}

			id := get(0)
			name := get(1)
			description := get(2)
			price, priceErr := decimal.NewFromString(get(3))
			categoryID, _ := strconv.Atoi(get(4))
			available := !strings.EqualFold(get(5), "false")
			image := get(6)

			if name == "" || priceErr != nil || price.IsNegative() {
				skippedCount++
				continue
			}

			if id != "" {
				var existing models.MenuItem
				if err := db.First(&existing, "id = ?", id).Error; err == nil {
					existing.Name = name
					existing.Description = description
					existing.Price = price
					existing.CategoryID = uint(categoryID)
					existing.Available = available
					existing.Image = image

					if err := db.Save(&existing).Error; err == nil {
						updatedCount++
						continue
					}
					skippedCount++
					continue
				}
			}

			item := models.MenuItem{
				ID:          uuid.NewString(),
				Name:        name,
				Description: description,
				Price:       price,
				CategoryID:  uint(categoryID),
				Available:   available,
				Image:       image,
			}
			if err := db.Create(&item).Error; err == nil {
				createdCount++
			} else {
				skippedCount++
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"message":       "Import completed",
			"created_count": createdCount,
			"updated_count": updatedCount,
			"skipped_count": skippedCount,
		})
	}
}
