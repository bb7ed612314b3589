package cli

import (
	"context"
	"fmt"
	"os"
)

// Upload requests a presigned PUT URL for a new gallery picture. The actual
// byte transfer happens out of band with any HTTP client.
func (a *App) Upload(ctx context.Context) error {
	if !a.guard("/gallery") {
		return nil
	}
	key, uploadURL, err := a.api.RequestUpload(ctx)
	if err != nil {
		fmt.Println("Failed to request upload:", err.Error())
		return err
	}
	fmt.Println("Key:", key)
	fmt.Println("PUT your file to:", uploadURL)
	return nil
}

// ShowPicture resolves a stored gallery key into a presigned GET URL.
func (a *App) ShowPicture(ctx context.Context) error {
	if !a.guard("/gallery") {
		return nil
	}
	key, err := getSimpleText(a.reader, "Enter picture key", os.Stdout)
	if err != nil {
		return err
	}
	viewURL, err := a.api.ResolveUpload(ctx, key)
	if err != nil {
		fmt.Println("Failed to resolve picture:", err.Error())
		return err
	}
	fmt.Println("View at:", viewURL)
	return nil
}
