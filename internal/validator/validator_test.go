package validator

import (
	"testing"
	"time"

	"github.com/bucsfan/sentiment-pipeline/internal/models"
)

func TestValidator_ValidateStruct(t *testing.T) {
	v := New()

	tests := []struct {
		name    string
		article models.ArticleRecord
		wantErr bool
	}{
		{
			name: "Valid Article",
			article: models.ArticleRecord{
				Key:              "article_0",
				Address:          "http://joebucsfan.com/2024/01/bucs-win/",
				PostTime:         time.Now(),
				WordCount:        120,
				NumberOfComments: 4,
			},
			wantErr: false,
		},
		{
			name: "Missing Key",
			article: models.ArticleRecord{
				Address:  "http://joebucsfan.com/a/",
				PostTime: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "Invalid Address",
			article: models.ArticleRecord{
				Key:      "article_0",
				Address:  "not-a-url",
				PostTime: time.Now(),
			},
			wantErr: true,
		},
		{
			name: "Negative Word Count",
			article: models.ArticleRecord{
				Key:       "article_0",
				Address:   "http://joebucsfan.com/a/",
				PostTime:  time.Now(),
				WordCount: -1,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := v.ValidateStruct(tt.article); (err != nil) != tt.wantErr {
				t.Errorf("ValidateStruct() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
