/*
 * Copyright (c) 2026 the Go Page Builder authors.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"log/slog"

	"gopagebuilder/internal/backend"
	"gopagebuilder/internal/config"
	"gopagebuilder/internal/crash"
	"gopagebuilder/internal/domain"
	applog "gopagebuilder/internal/log"
	"gopagebuilder/internal/schema"
	"gopagebuilder/internal/storage"
	"gopagebuilder/internal/tree"
	"gopagebuilder/internal/version"
)

func usage() {
	fmt.Println("Go Page Builder")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pagebuilder version|-v|--version       Show version")
	fmt.Println("  pagebuilder validate <doc.json>        Validate a page document")
	fmt.Println("  pagebuilder inspect <doc.json>         Print document statistics")
	fmt.Println("  pagebuilder drafts <dir> [slug]        List stored drafts in a workspace")
	fmt.Println("  pagebuilder publish <doc.json>         Publish a page document to the backend")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	defer crash.Recover("", nil)

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}

	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("Go Page Builder")
		fmt.Println(version.String())
	case "validate":
		if len(args) < 3 {
			fmt.Println("validate requires <doc.json>")
			usage()
			os.Exit(2)
		}
		if err := runValidate(args[2]); err != nil {
			l.Error("validate failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
		fmt.Println("Document is valid.")
	case "inspect":
		if len(args) < 3 {
			fmt.Println("inspect requires <doc.json>")
			usage()
			os.Exit(2)
		}
		if err := runInspect(args[2]); err != nil {
			l.Error("inspect failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "drafts":
		if len(args) < 3 {
			fmt.Println("drafts requires <dir>")
			usage()
			os.Exit(2)
		}
		slug := ""
		if len(args) > 3 {
			slug = args[3]
		}
		if err := runDrafts(args[2], slug); err != nil {
			l.Error("drafts failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	case "publish":
		if len(args) < 3 {
			fmt.Println("publish requires <doc.json>")
			usage()
			os.Exit(2)
		}
		if err := runPublish(args[2]); err != nil {
			l.Error("publish failed", slog.Any("err", err))
			fmt.Println("Error:", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func loadDocument(path string) (*domain.PageDocument, []byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := schema.ValidatePage(raw); err != nil {
		return nil, raw, err
	}
	var doc domain.PageDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, raw, fmt.Errorf("decode %s: %w", path, err)
	}
	return &doc, raw, nil
}

func runValidate(path string) error {
	doc, _, err := loadDocument(path)
	if err != nil {
		return err
	}
	if dups := tree.DuplicateIDs(doc.Elements); len(dups) > 0 {
		return fmt.Errorf("duplicate element ids: %v", dups)
	}
	return lintContainers(doc.Elements)
}

// lintContainers flags children under elements whose normalized type cannot
// hold them.
func lintContainers(forest tree.Forest) error {
	for _, el := range forest {
		if len(el.Children) > 0 && !domain.ContainerCapable(domain.Normalize(string(el.Type))) {
			return fmt.Errorf("element %s (%s) has children but is not container-capable", el.ID, el.Type)
		}
		if err := lintContainers(el.Children); err != nil {
			return err
		}
	}
	return nil
}

func runInspect(path string) error {
	doc, _, err := loadDocument(path)
	if err != nil {
		return err
	}
	fmt.Printf("Title:     %s\n", doc.Settings.Title)
	fmt.Printf("Slug:      %s\n", doc.Settings.Slug)
	fmt.Printf("Published: %v\n", doc.Settings.Published)
	fmt.Printf("Elements:  %d\n", tree.CountNodes(doc.Elements))
	fmt.Printf("Roots:     %d\n", len(doc.Elements))
	fmt.Printf("Depth:     %d\n", tree.Depth(doc.Elements))
	fmt.Printf("Max z:     %d\n", tree.MaxZIndex(doc.Elements))
	return nil
}

func runDrafts(dir, slug string) error {
	abs, _ := filepath.Abs(dir)
	db, err := storage.InitOrOpenDrafts(abs)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	drafts, err := storage.ListDrafts(ctx, db, slug, 0)
	if err != nil {
		return err
	}
	if len(drafts) == 0 {
		fmt.Println("No drafts.")
		return nil
	}
	for _, d := range drafts {
		flag := ""
		if d.Emergency {
			flag = "  (emergency)"
		}
		fmt.Printf("%6d  %-20s  %s%s\n", d.ID, d.Slug, d.SavedAt.Format(time.RFC3339), flag)
	}
	return nil
}

func runPublish(path string) error {
	doc, _, err := loadDocument(path)
	if err != nil {
		return err
	}
	cfg, _, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	p, err := backend.Open(ctx, cfg.Backend.PostgresDSN)
	if err != nil {
		return err
	}
	defer func() { _ = p.Close() }()
	if err := p.Publish(ctx, doc); err != nil {
		return err
	}
	fmt.Printf("Published %q.\n", doc.Settings.Slug)
	return nil
}
