// Package clinicbot embeds the GAIA PET clinic chatbot in a Go program without
// running the HTTP server.
//
// Questions in a retrieval language are matched against a precomputed reference
// corpus; confident matches return the canonical translated answer, everything
// else is generated. The primary language is always generated.
//
//	client, _ := clinicbot.New(ctx,
//	    clinicbot.WithOpenAI(os.Getenv("OPENAI_API_KEY"), ""),
//	    clinicbot.WithCorpusFiles(map[string]string{
//	        "en": "data/en.parquet",
//	        "ja": "data/ja.parquet",
//	    }),
//	    clinicbot.WithTranslations("data/qa_translations.json"),
//	)
//	defer client.Close()
//
//	ans, _ := client.Ask(ctx, "What time do you open?", "en")
//	if ans.Matched {
//	    fmt.Println(ans.QuestionID, ans.Score)
//	}
//	fmt.Println(ans.Text)
//
// Corpora can also be served from Redis/Valkey after importing them with the
// corpus-seed tool:
//
//	client, _ := clinicbot.New(ctx,
//	    clinicbot.WithOpenAI(key, ""),
//	    clinicbot.WithRedis("localhost:6379", "", "clinicbot:"),
//	    clinicbot.WithLanguages("en", "ja"),
//	    clinicbot.WithTranslations("data/qa_translations.json"),
//	)
package clinicbot
