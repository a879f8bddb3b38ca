package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"cs-agent-be/internal/config"
	"cs-agent-be/internal/constant"
	"cs-agent-be/internal/entity"
	"cs-agent-be/internal/repository/contract"
	"cs-agent-be/internal/repository/implementation"
	"cs-agent-be/pkg/access"
	"cs-agent-be/pkg/database"
	"cs-agent-be/pkg/embedding"
	"cs-agent-be/pkg/utils"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// Chunking geometry shared with the ingestion pipeline.
// ChunkSize: 1500 chars (approx 375 tokens), Overlap: 200 chars.
const (
	chunkSize    = 1500
	chunkOverlap = 200
)

// manifestEntry maps one source file to its collection and access role. The
// role is resolved to permission tags exactly like a chat caller's role.
type manifestEntry struct {
	File       string `json:"file"`
	Collection string `json:"collection"`
	Role       string `json:"role"`
	TenantId   string `json:"tenantId"`
}

func main() {
	docsDir := flag.String("dir", "./knowledge", "directory with documents and manifest.json")
	flag.Parse()

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
	}

	chunkRepo := implementation.NewKnowledgeChunkRepository(db)
	resolver := access.NewResolver()
	ctx := context.Background()

	color.Cyan("🚀 Seeding knowledge base from %s\n", *docsDir)

	entries, err := loadManifest(*docsDir)
	if err != nil {
		color.Red("Failed to read manifest: %v", err)
		os.Exit(1)
	}

	seeded, failed := 0, 0
	for _, entry := range entries {
		color.Yellow("\n[FILE] %s (collection=%s, role=%s)", entry.File, entry.Collection, entry.Role)

		if err := seedFile(ctx, *docsDir, entry, resolver, embeddingProvider, chunkRepo); err != nil {
			color.Red("Failed: %v", err)
			failed++
			continue
		}
		seeded++
	}

	if failed > 0 {
		color.Red("\nDone with errors: %d seeded, %d failed", seeded, failed)
		os.Exit(1)
	}
	color.Green("\n✅ Done: %d files seeded", seeded)
}

func loadManifest(dir string) ([]manifestEntry, error) {
	data, err := os.ReadFile(filepath.Join(dir, "manifest.json"))
	if err != nil {
		return nil, err
	}

	var entries []manifestEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	for i := range entries {
		if entries[i].Collection == "" {
			entries[i].Collection = constant.CollectionPrimary
		}
		if entries[i].TenantId == "" {
			entries[i].TenantId = constant.DefaultTenantID
		}
	}
	return entries, nil
}

func seedFile(
	ctx context.Context,
	dir string,
	entry manifestEntry,
	resolver *access.Resolver,
	embeddingProvider embedding.EmbeddingProvider,
	chunkRepo contract.KnowledgeChunkRepository,
) error {
	content, err := os.ReadFile(filepath.Join(dir, entry.File))
	if err != nil {
		return err
	}

	scope := resolver.Resolve(entry.Role)

	chunks := utils.SplitText(string(content), chunkSize, chunkOverlap)
	log.Printf("[INFO] %s split into %d chunks", entry.File, len(chunks))

	newChunks := make([]*entity.KnowledgeChunk, 0, len(chunks))
	for i, chunk := range chunks {
		res, err := embeddingProvider.Generate(chunk, embedding.TaskRetrievalDocument)
		if err != nil {
			return err
		}

		// Every document is readable at the allAccess tier: the allperm
		// filter selects WHERE all_perm, so leaving this false would hide
		// role-scoped documents from the broadest grant.
		newChunks = append(newChunks, &entity.KnowledgeChunk{
			Id:             uuid.New(),
			FileId:         entry.File,
			FileName:       entry.File,
			Collection:     entry.Collection,
			ChunkIndex:     i,
			Content:        chunk,
			EmbeddingValue: res.Embedding.Values,
			Perm:           normalizeTag(scope.Level),
			SuperPerm:      normalizeTag(scope.SuperLevel),
			AllPerm:        true,
			TenantId:       entry.TenantId,
			CreatedAt:      time.Now(),
		})
	}

	// Re-seeding a file replaces its chunks.
	if err := chunkRepo.DeleteByFileId(ctx, entry.File); err != nil {
		return err
	}
	return chunkRepo.CreateBulk(ctx, newChunks)
}

func normalizeTag(level string) string {
	if level == "" {
		return "0"
	}
	return level
}
