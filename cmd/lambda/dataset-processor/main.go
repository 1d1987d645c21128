// Dataset processor Lambda entry point, triggered by S3 uploads under uploads/
package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/r3troseer/SME-loan-transact/internal/handlers"
	"github.com/r3troseer/SME-loan-transact/internal/utils"
)

func main() {
	_ = utils.InitLogger(os.Getenv("LOG_LEVEL"))
	defer utils.Sync()

	handler, cleanup, err := handlers.NewDatasetProcessorHandler(context.Background())
	if err != nil {
		utils.GetLogger().Fatal("Failed to create handler", utils.Error(err))
	}
	defer cleanup()

	lambda.Start(handler.Handle)
}
