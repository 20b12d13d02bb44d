// Package mongo connects to the MongoDB deployment that backs the policy
// repository when NOTIFY_POLICY_BACKEND=mongo.
//
//	coll, err := mongo.Collection(ctx, cfg)
//	if err != nil {
//	    return err
//	}
//	repo := policy.NewMongoRepository(coll)
//
// Connection failures wrap ErrConnect.
package mongo
