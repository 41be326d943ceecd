package firestore

import (
	"context"
	"testing"

	"cloud.google.com/go/firestore"
)

func TestTransactionFromContext(t *testing.T) {
	if _, ok := TransactionFromContext(context.Background()); ok {
		t.Fatal("bare context reported a transaction")
	}

	tx := &firestore.Transaction{}
	ctx := withTransaction(context.Background(), tx)
	got, ok := TransactionFromContext(ctx)
	if !ok {
		t.Fatal("context with transaction reported none")
	}
	if got != tx {
		t.Fatalf("TransactionFromContext = %p, want the stored transaction %p", got, tx)
	}
}

func TestTransactionFromContextIgnoresNil(t *testing.T) {
	ctx := withTransaction(context.Background(), nil)
	if _, ok := TransactionFromContext(ctx); ok {
		t.Fatal("nil transaction reported as active")
	}
}

func TestRunTransactionValidatesArguments(t *testing.T) {
	ctx := context.Background()
	noop := func(context.Context, *firestore.Transaction) error { return nil }

	if err := RunTransaction(ctx, nil, noop); err == nil {
		t.Fatal("expected error for nil client")
	}
	if err := RunTransaction(ctx, &firestore.Client{}, nil); err == nil {
		t.Fatal("expected error for nil transaction function")
	}
}
