package validators

import "go.mongodb.org/mongo-driver/bson"

var RoomValidator = bson.M{
	"$jsonSchema": bson.M{
		"bsonType":             "object",
		"required":             []string{"_id", "name", "capacity", "version", "bookings"},
		"additionalProperties": true,
		"properties": bson.M{
			"_id": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 64,
			},
			"name": bson.M{
				"bsonType":  "string",
				"minLength": 1,
				"maxLength": 200,
			},
			"capacity": bson.M{
				"bsonType": []string{"int", "long"},
				"minimum":  1,
			},
			"version": bson.M{
				"bsonType": "long",
				"minimum":  0,
			},
			"bookings": bson.M{
				"bsonType": "array",
				"items": bson.M{
					"bsonType": "object",
					"required": []string{"booking_id", "room_id", "start_time", "end_time"},
					"properties": bson.M{
						"booking_id": bson.M{"bsonType": "string", "minLength": 1},
						"room_id":    bson.M{"bsonType": "string", "minLength": 1},
						"start_time": bson.M{"bsonType": "date"},
						"end_time":   bson.M{"bsonType": "date"},
						"created_at": bson.M{"bsonType": "date"},
					},
				},
			},
			"updated_at": bson.M{"bsonType": "date"},
		},
	},
}
