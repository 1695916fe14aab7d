package enact

import (
	"context"
	"errors"
	"testing"
)

func TestSpawn_RequiresEnclosingNode(t *testing.T) {
	store := NewStore(NewMemoryBackend())
	ctx := WithStore(context.Background(), store)

	_, err := Spawn(ctx, incrementFn, testCounter{Value: 1})
	if err == nil {
		t.Fatal("Spawn() should fail with no enclosing tracked invocation")
	}
}

func TestSpawn_AwaitReturnsResult(t *testing.T) {
	store := NewStore(NewMemoryBackend())
	ctx := WithStore(context.Background(), store)

	spawner := NewFunc("asyncdriver_test.spawner", func(ctx context.Context, in testCounter) (testCounter, error) {
		task, err := Spawn(ctx, incrementFn, in)
		if err != nil {
			return testCounter{}, err
		}
		return task.Await()
	})

	out, err := Invoke(ctx, spawner, testCounter{Value: 4})
	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	if out.Value != 5 {
		t.Errorf("Value = %d, want 5", out.Value)
	}
}

func TestSpawn_UnawaitedTaskReportsIncomplete(t *testing.T) {
	store := NewStore(NewMemoryBackend())
	ctx := WithStore(context.Background(), store)

	forgetful := NewFunc("asyncdriver_test.forgetful", func(ctx context.Context, in testCounter) (testCounter, error) {
		if _, err := Spawn(ctx, incrementFn, in); err != nil {
			return testCounter{}, err
		}
		return in, nil
	})

	_, err := Invoke(ctx, forgetful, testCounter{Value: 1})
	var incomplete *IncompleteSubinvocationError
	if !errors.As(err, &incomplete) {
		t.Fatalf("Invoke() error = %v, want *IncompleteSubinvocationError", err)
	}
}

func TestGather_PreservesCallerOrder(t *testing.T) {
	store := NewStore(NewMemoryBackend())
	ctx := WithStore(context.Background(), store)

	gatherer := NewFunc("asyncdriver_test.gatherer", func(ctx context.Context, in testCounter) (testCounter, error) {
		ins := []testCounter{{Value: 1}, {Value: 2}, {Value: 3}}
		outs, err := Gather(ctx, incrementFn, ins)
		if err != nil {
			return testCounter{}, err
		}
		var sum int64
		for i, o := range outs {
			sum += o.Value * int64(i+1) // order-sensitive checksum
		}
		return testCounter{Value: sum}, nil
	})

	out, err := Invoke(ctx, gatherer, testCounter{})
	if err != nil {
		t.Fatalf("Invoke() error: %v", err)
	}
	// outs = [2, 3, 4] in caller order regardless of completion order
	want := int64(2*1 + 3*2 + 4*3)
	if out.Value != want {
		t.Errorf("Value = %d, want %d", out.Value, want)
	}
}

func TestGather_ReturnsFirstError(t *testing.T) {
	store := NewStore(NewMemoryBackend())
	ctx := WithStore(context.Background(), store)

	gatherer := NewFunc("asyncdriver_test.gatherer_fail", func(ctx context.Context, in testCounter) (testCounter, error) {
		ins := []testCounter{{Value: 1}}
		_, err := Gather(ctx, failingFn, ins)
		return testCounter{}, err
	})

	_, err := Invoke(ctx, gatherer, testCounter{})
	if err == nil {
		t.Fatal("Invoke() should surface the error raised by a gathered task")
	}
}
